package middleware

import (
	"net/http"
	"time"

	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := newStatusRecorder(w)

			next.ServeHTTP(resp, r)

			if !log.IsLevelEnabled(log.DebugLevel) {
				return
			}
			ip, _ := pkg.ReadUserIP(r)
			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   resp.statusCode,
				"duration": time.Since(start).String(),
				"ip":       ip,
				"ua":       r.Header.Get("User-Agent"),
			}).Debug("request served")
		})
	}
}
