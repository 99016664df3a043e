package nats

import (
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const DefaultURL = "nats://localhost:4222"

type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn
}

// Connect dials url, authenticating with token when one is set. The
// connection reconnects indefinitely so a broker restart does not take the
// service down.
func Connect(name, url, token string) (*Nats, error) {
	n := &Nats{
		Url:   url,
		Token: token,
	}

	if n.Url == "" {
		n.Url = DefaultURL
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infof("NATS reconnected to %s", c.ConnectedUrl())
		}),
	}

	// if token provided
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return nil, err
	}

	n.Conn = conn

	return n, nil
}
