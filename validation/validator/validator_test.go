package validator

import (
	"strings"
	"testing"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nick     string `json:"nick,omitempty" validate:"omitempty,uppercase"`
}

type shouted struct {
	Word string `json:"word" validate:"shout"`
}

func TestValidateStructKeysByJSONName(t *testing.T) {
	errs := ValidateStruct(&signup{Password: "short"})

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs["email"] != "The field 'email' is required." {
		t.Errorf("email message = %q", errs["email"])
	}
	if errs["password"] != "The field 'password' must be at least 8 characters long." {
		t.Errorf("password message = %q", errs["password"])
	}
}

func TestValidateStructAcceptsValues(t *testing.T) {
	errs := ValidateStruct(signup{Email: "a@b.io", Password: "long enough"})
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidateStructLanguageAndFallback(t *testing.T) {
	errs := ValidateStruct(&signup{Email: "a@b.io", Password: "long enough", Nick: "lower"}, "zh")
	if !strings.HasPrefix(errs["nick"], "Field 'nick' is invalid") {
		t.Errorf("fallback message = %q", errs["nick"])
	}

	errs = ValidateStruct(&signup{}, "zh")
	if errs["email"] != "字段 'email' 为必填项。" {
		t.Errorf("zh message = %q", errs["email"])
	}
}

func TestRegisterValidation(t *testing.T) {
	if err := RegisterValidation("shout", func(s string) bool { return s == strings.ToUpper(s) }); err != nil {
		t.Fatal(err)
	}
	if errs := ValidateStruct(&shouted{Word: "HEY"}); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := ValidateStruct(&shouted{Word: "hey"}); errs["word"] == "" {
		t.Error("expected the custom tag to reject lower case")
	}
}
