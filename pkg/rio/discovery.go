package rio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// MaxControllers is the number of controller addresses probed by Discover.
const MaxControllers = 5

// ControllerType returns the zone and source counts of a controller model.
func ControllerType(model string) (zones, sources int) {
	switch {
	case strings.HasPrefix(model, "MBX"), strings.HasPrefix(model, "X"):
		return 1, 1
	case strings.HasPrefix(model, "MCA-88"), strings.HasPrefix(model, "MCA-C5"):
		return 8, 8
	default:
		return 6, 6
	}
}

// ZoneName is a discovered zone.
type ZoneName struct {
	Zone int
	Name string
}

// Controller is a discovered controller.
type Controller struct {
	Controller int
	Type       string
	Zones      []ZoneName
}

// System is the result of Discover.
type System struct {
	Controllers []Controller

	// Sources are the system-wide sources S[1..n]; index 0 is source 1.
	Sources []string
}

// Table converts the controller's part of the system into the table the
// binary protocol's config reassembler produces.
func (s *System) Table(controller int) (*rnet.ZoneSourceTable, bool) {
	for _, c := range s.Controllers {
		if c.Controller != controller {
			continue
		}
		t := &rnet.ZoneSourceTable{
			Controller:  c.Controller,
			ZoneCount:   len(c.Zones),
			SourceCount: len(s.Sources),
			SourceNames: append([]string(nil), s.Sources...),
		}
		for _, z := range c.Zones {
			t.ZoneNames = append(t.ZoneNames, z.Name)
		}
		return t, true
	}
	return nil, false
}

// Discover probes controllers 1..5 for their type, then reads the name of
// every zone and source. Requests are issued one at a time. An error
// response means there is no controller at that address; a timeout aborts
// discovery.
func Discover(ctx context.Context, c *Client) (*System, error) {
	sys := &System{}
	sources := 0

	for n := 1; n <= MaxControllers; n++ {
		ctrl := ControllerAddress(n)
		model, err := c.GetValue(ctx, ctrl.String(), AttrType)
		if errors.Is(err, ErrErrorResponse) {
			c.logger.Info("no controller", slog.Int("controller", n))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("controller %d type: %w", n, err)
		}

		zones, srcs := ControllerType(model)
		sources += srcs
		c.logger.Info("controller found",
			slog.Int("controller", n),
			slog.String("type", model),
			slog.Int("zones", zones))

		found := Controller{Controller: n, Type: model}
		for z := 1; z <= zones; z++ {
			name, err := c.GetValue(ctx, ZoneAddress(n, z).String(), AttrName)
			if err != nil && !errors.Is(err, ErrErrorResponse) {
				return nil, fmt.Errorf("zone %s name: %w", ZoneAddress(n, z), err)
			}
			found.Zones = append(found.Zones, ZoneName{Zone: z, Name: name})
		}
		sys.Controllers = append(sys.Controllers, found)
	}

	for s := 1; s <= sources; s++ {
		name, err := c.GetValue(ctx, SourceAddress(s).String(), AttrName)
		if err != nil && !errors.Is(err, ErrErrorResponse) {
			return nil, fmt.Errorf("source %d name: %w", s, err)
		}
		sys.Sources = append(sys.Sources, name)
	}

	return sys, nil
}
