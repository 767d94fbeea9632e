package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MOrdersPlaced        MetricKey = "orders_placed_total"
	MStockDecremented    MetricKey = "stock_decremented_total"
	MRateLimitDecisions  MetricKey = "rate_limit_decisions_total"
	MSessionVerifies     MetricKey = "session_verifications_total"
)
