package instance

import (
	"github.com/nxyyspace/api/internal/svc/palette"
	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/nxyyspace/api/internal/svc/prometheus"
	"github.com/nxyyspace/api/internal/svc/upstream"
)

type Instances struct {
	Prometheus prometheus.Instance
	Presence   presence.Instance
	Palette    palette.Instance
	Upstreams  upstream.Instance
}
