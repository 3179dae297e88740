package log

const (
	KeyAppName         = "app"
	KeyBody            = "body"
	KeyCacheKey        = "cacheKey"
	KeyCart            = "cart"
	KeyCartID          = "cartId"
	KeyCarts           = "carts"
	KeyClientSecret    = "clientSecret"
	KeyConfig          = "config"
	KeyFilePath        = "filePath"
	KeyHeader          = "header"
	KeyOrder           = "order"
	KeyPaymentAmount   = "paymentAmount"
	KeyPaymentIntentID = "paymentIntentId"
	KeyProcess         = "process"
	KeyProductCount    = "productCount"
	KeyProductID       = "productId"
	KeyRequest         = "request"
	KeyRequestHost     = "host"
	KeyRequestID       = "requestId"
	KeyRequestIP       = "requesterIP"
	KeyRequestMethod   = "requestMethod"
	KeyRequestURI      = "requestURI"
	KeyRequestURL      = "requestURL"
	KeySpanID          = "spanId"
	KeyStatusCode      = "statusCode"
	KeyTag             = "tag"
	KeyTotal           = "total"
	KeyTraceID         = "traceId"
	KeyUpstreamURL     = "upstreamURL"
	KeyUserID          = "userId"
)
