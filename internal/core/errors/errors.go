package errors

type Exception struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     string `json:"error,omitempty"`
}

func (e *Exception) Error() string {
	return e.Message
}

type Option func(*Exception)

func WithCode(code int) Option {
	return func(e *Exception) {
		e.Code = code
	}
}

func WithMessage(message string) Option {
	return func(e *Exception) {
		e.Message = message
	}
}

func WithError(err error) Option {
	return func(e *Exception) {
		e.Err = err.Error()
	}
}

func NotFound(opts ...Option) *Exception {
	defaults := []Option{
		WithCode(404),
		WithMessage("no entities found with given parameters"),
	}
	return newException(append(defaults, opts...)...)
}

func BadRequest(opts ...Option) *Exception {
	defaults := []Option{
		WithCode(400),
		WithMessage("bad request"),
	}
	return newException(append(defaults, opts...)...)
}

func Conflict(opts ...Option) *Exception {
	defaults := []Option{
		WithCode(409),
		WithMessage("conflict"),
	}
	return newException(append(defaults, opts...)...)
}

func Unexpected(opts ...Option) *Exception {
	defaults := []Option{
		WithCode(500),
		WithMessage("internal server error"),
	}
	return newException(append(defaults, opts...)...)
}

func newException(opts ...Option) *Exception {
	e := &Exception{
		Code:    500,
		Message: "internal server error",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
