package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	ghandlers "github.com/gorilla/handlers"
)

type slogRecoveryLogger struct{}

func (slogRecoveryLogger) Println(v ...interface{}) {
	slog.Error("panic recovered", "error", fmt.Sprint(v...))
}

// Recovery turns a handler panic into a 500 response and an error log record.
func Recovery(next http.Handler) http.Handler {
	return ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(slogRecoveryLogger{}),
		ghandlers.PrintRecoveryStack(false),
	)(next)
}
