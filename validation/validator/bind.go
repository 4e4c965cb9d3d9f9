package validator

import (
	"github.com/gin-gonic/gin"
)

// ShouldBindAndValidateStruct binds the request into obj and validates it.
// A bind failure is returned as error; validation problems come back as the
// field map.
func ShouldBindAndValidateStruct(c *gin.Context, obj any, lang ...string) (map[string]string, error) {
	if err := c.ShouldBind(obj); err != nil {
		return nil, err
	}
	return ValidateStruct(obj, lang...), nil
}
