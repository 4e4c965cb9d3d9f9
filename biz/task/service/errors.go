package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/biz/task/store"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/net/resp"
)

// fail writes the HTTP form of a store error. The store has already
// logged it and sent the notification.
func fail(c *gin.Context, err error) {
	var (
		verr *structs.ValidationError
		nerr *structs.NotFoundError
		perr *structs.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		resp.Fail(c.Writer, resp.BadRequest(store.MsgInvalid, verr.Fields))
	case errors.As(err, &nerr):
		resp.Fail(c.Writer, resp.NotFound(store.MsgNotFound))
	case errors.Is(err, store.ErrUnexpected):
		resp.Fail(c.Writer, resp.InternalServer(store.MsgUnexpected))
	case errors.Is(err, store.ErrNotAuthenticated):
		resp.Fail(c.Writer, resp.UnAuthorized("unauthorized"))
	case errors.As(err, &perr):
		resp.Fail(c.Writer, resp.BadGateway(failedMessage(perr.Op)))
	default:
		resp.Fail(c.Writer, resp.InternalServer(store.MsgUnexpected))
	}
}

func failedMessage(op string) string {
	switch op {
	case "load":
		return store.MsgLoadFailed
	case "create":
		return store.MsgCreateFailed
	case "delete":
		return store.MsgDeleteFailed
	default:
		return store.MsgUpdateFailed
	}
}

// malformed answers a body or query that could not be decoded at all.
func malformed(c *gin.Context, err error) {
	resp.Fail(c.Writer, resp.BadRequest("malformed request", err.Error()))
}
