package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamchat_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamchat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamchat_messages_created_total",
			Help: "Total number of messages created.",
		},
		[]string{"destination"},
	)
	ownershipSuccessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "teamchat_ownership_successions_total",
			Help: "Total number of channel ownership successions on owner departure.",
		},
	)
	channelsAutoDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "teamchat_channels_auto_deleted_total",
			Help: "Total number of channels deleted when their last member left.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "teamchat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesCreatedTotal,
		ownershipSuccessionsTotal,
		channelsAutoDeletedTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncMessageCreated(destination string) {
	messagesCreatedTotal.WithLabelValues(destination).Inc()
}

func IncOwnershipSuccession() {
	ownershipSuccessionsTotal.Inc()
}

func IncChannelAutoDeleted() {
	channelsAutoDeletedTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
