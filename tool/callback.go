package tool

import (
	"github.com/gin-gonic/gin"
)

// Response envelopes of the local API: {"data": ...} on success, {"error": ...} otherwise.

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}

// FastReturnErrorWithData is used when the UI needs more than the message,
// e.g. the status the panel backend answered with.
func FastReturnErrorWithData(msg string, data any) gin.H {
	return gin.H{
		"error": msg,
		"data":  data,
	}
}
