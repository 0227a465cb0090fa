package gateway

// Response is the fixed-vocabulary JSON body returned to the gateway on the
// IPN path. The gateway only ever sees HTTP 200 with one of these.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	RespConfirmSuccess   = Response{Code: "00", Message: "Confirm Success"}
	RespOrderNotFound    = Response{Code: "01", Message: "Order not found"}
	RespAlreadyConfirmed = Response{Code: "02", Message: "Order already confirmed"}
	RespInvalidAmount    = Response{Code: "04", Message: "Invalid amount"}
	RespInvalidSignature = Response{Code: "97", Message: "Invalid signature"}
	RespUnknownError     = Response{Code: "99", Message: "Unknown error"}
)
