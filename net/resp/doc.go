// Package resp writes the JSON envelopes returned by the HTTP handlers.
//
// Successful calls write the payload as is, or {"message": "..."} when the
// payload is a bare string. Failures write {"code", "message", "errors"}
// with the HTTP status of the exception.
//
//	resp.Success(w, tasks)
//	resp.WithStatusCode(w, http.StatusCreated, task)
//	resp.Fail(w, resp.NotFound("Task not found"))
package resp
