package middleware

import (
    "github.com/labstack/echo/v4"
    echoMw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// RequestLogger writes one structured line per request through zap.
// Server errors log at ERROR, client errors at WARN, the rest at INFO.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
        LogStatus:    true,
        LogURI:       true,
        LogMethod:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true, // let the error handler set the status before logging
        LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
            level := zapcore.InfoLevel
            switch {
            case v.Status >= 500:
                level = zapcore.ErrorLevel
            case v.Status >= 400:
                level = zapcore.WarnLevel
            }
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency),
                zap.String("remote_ip", v.RemoteIP),
                zap.String("user", userID(c)),
            }
            if v.RequestID != "" {
                fields = append(fields, zap.String("request_id", v.RequestID))
            }
            if v.Error != nil && v.Status >= 500 {
                fields = append(fields, zap.Error(v.Error))
            }
            log.Log(level, "request", fields...)
            return nil
        },
    })
}
