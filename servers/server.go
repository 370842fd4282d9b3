package servers

// Server defines the interface for a manageable server.
type Server interface {
	Start() error
	Stop() error
	Name() string
}
