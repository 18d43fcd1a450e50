package mainboilerplate

// Version and BuildDate of the program, populated at link time via:
//
//	go build -ldflags "-X go.gazette.dev/fsbench/mainboilerplate.Version=v1.2.3 \
//	  -X go.gazette.dev/fsbench/mainboilerplate.BuildDate=2024-01-01T00:00:00Z"
var (
	Version   = "development"
	BuildDate = "unknown"
)
