// Package ecode defines the business codes carried in failure responses.
//
//	resp.Fail(w, &resp.Exception{
//	    Status:  http.StatusUnauthorized,
//	    Code:    ecode.NoLogin,
//	    Message: ecode.Text(ecode.NoLogin),
//	})
package ecode
