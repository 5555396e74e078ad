package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/nsif/nsif/nlmsg"
)

var Version = "v1.0.0"

// IFNAMSIZ bounds interface names to 15 characters plus NUL; pids go
// up to 7 digits, which caps the transient name prefix at 8.
const maxNetifPrefixLen = 8

type Config struct {
	GoEnv   string `default:"development"`
	Version string `ignore:"true"`

	// NetifPrefix prefixes the deterministic transient name given to
	// freshly created macvlan/veth interfaces before they are renamed
	// inside the target namespace.
	NetifPrefix string `envconfig:"NETIF_PREFIX" default:"nsif-"`

	// NetlinkBufferSize is the fixed capacity of netlink request
	// buffers; requests that do not fit fail instead of growing.
	NetlinkBufferSize int `envconfig:"NETLINK_BUFFER_SIZE" default:"4096"`
}

func Build() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse environment configuration")
	}
	c.Version = Version

	err = c.check()
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) check() error {
	if len(c.NetifPrefix) > maxNetifPrefixLen {
		return errors.Errorf("netif prefix %q is longer than %d characters", c.NetifPrefix, maxNetifPrefixLen)
	}
	if c.NetlinkBufferSize < nlmsg.HdrLen+nlmsg.BodyLen {
		return errors.Errorf("netlink buffer size %d is too small for a link message", c.NetlinkBufferSize)
	}
	return nil
}
