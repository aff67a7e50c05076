package port

// Request abstracts the inbound HTTP request for the authentication
// strategies. The transport layer adapts its framework request onto this
// interface; every accessor returns "" when the value is absent.
type Request interface {
	Header(name string) string
	Cookie(name string) string
	FormValue(name string) string
}
