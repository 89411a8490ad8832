package foyer

// Middleware wraps a HandleFunc with cross-cutting behavior. A middleware
// receives the next step of the chain and returns the wrapped version; the
// server composes the registered middlewares so that a request flows through
// them in registration order before reaching the route handler, and back out
// in reverse order afterwards.
//
// A middleware that decides to stop the request (auth rejection, rate limit,
// overload shedding) simply does not call next and writes its own response
// into the Context; the entry point flushes whatever the chain produced.
type Middleware func(next HandleFunc) HandleFunc
