// Package apperrors provides chained sentinel errors. A root error is created
// with New and specialised with New, Msg, MsgErr or Err; every derived error
// still matches its ancestors with errors.Is. An error can also carry the HTTP
// status code that best describes it.
package apperrors

// Error is the interface implemented by all application errors. Methods
// return a new Error and never modify the receiver.
type Error interface {
	error
	Unwrap() error

	New(msg string) Error                 // new message, current error as ancestor
	Msg(msg string) Error                 // new message, current error wrapped
	MsgErr(msg string, err ...error) Error // new message, current and extra errors wrapped
	Err(err ...error) Error               // same message, extra errors wrapped
	SetExpandError(bool) Error            // ErrorAll includes wrapped errors when true
	SetStatusCode(int) Error              // attach an HTTP status code
	StatusCode() int                      // attached HTTP status code, 0 if none
	ErrorAll() string                     // message plus wrapped errors when expanded
	UnwrapAll() []error                   // wrapped errors in the order added
}
