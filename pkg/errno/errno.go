package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage 返回一个携带具体信息的副本，Code 保持不变
// 用于把上游返回的 description 原样透传给调用方
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Is 按 Code 判等，使 errors.Is(err, errno.ErrXxx) 可用
func (e Errno) Is(target error) bool {
	t, ok := target.(Errno)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Wallet Errors (20000+)
var (
	ErrWalletNotFound = Errno{Code: 20201, Message: "Wallet not found for this user and chain"}
	ErrWalletExists   = Errno{Code: 20202, Message: "Wallet already exists for this user and chain"}
	ErrWalletBusy     = Errno{Code: 20203, Message: "Another payment for this wallet is in flight, try again later"}
	ErrBadAddress     = Errno{Code: 20204, Message: "Invalid destination address"}
	ErrBadChain       = Errno{Code: 20205, Message: "Unsupported chain"}
)

// Engine Errors (30000+)
// 与交易引擎的错误分类一一对应：凭证耗尽 / 余额不足 / 解密失败 / 上游不可用 / 广播被拒
var (
	ErrCredentialsExhausted = Errno{Code: 30001, Message: "All gateway API credentials are over quota or rejected"}
	ErrInsufficientFunds    = Errno{Code: 30002, Message: "Insufficient funds to cover amount and network fee"}
	ErrKeyDecryption        = Errno{Code: 30003, Message: "Failed to decrypt custodial key material"}
	ErrUpstreamUnavailable  = Errno{Code: 30004, Message: "Upstream chain API is unavailable"}
	ErrBroadcastRejected    = Errno{Code: 30005, Message: "The network rejected the transaction"}
)
