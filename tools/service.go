package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Nairolf138/eos-mcp/cache"
	"github.com/Nairolf138/eos-mcp/health"
	"github.com/Nairolf138/eos-mcp/osc"
)

// Console is the subset of the OSC client the tool handlers use.
type Console interface {
	// Request sends a message and waits for the correlated reply.
	Request(ctx context.Context, address string, args ...any) (osc.Message, error)

	// Send transmits a message without waiting for a reply.
	Send(ctx context.Context, address string, args ...any) error

	// Ping checks console reachability.
	Ping(ctx context.Context) error
}

// Service implements the tool handlers against the cache and the console.
type Service struct {
	cache   *cache.Cache
	console Console
	log     *zap.Logger
	checks  *health.Aggregator
}

// NewService wires the handlers. The cache instance is owned by the
// composition root and shared with the broadcast pump.
func NewService(c *cache.Cache, console Console, log *zap.Logger) (*Service, error) {
	if c == nil {
		return nil, errors.New("tools: cache is required")
	}
	if console == nil {
		return nil, errors.New("tools: console is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{cache: c, console: console, log: log, checks: health.NewAggregator(0)}

	s.checks.Register("console", health.NewCheckerFunc("console", func(ctx context.Context) health.Result {
		if err := console.Ping(ctx); err != nil {
			return health.Unhealthy("console unreachable", err)
		}
		return health.Healthy("console responding")
	}))
	s.checks.Register("cache", health.NewCheckerFunc("cache", func(context.Context) health.Result {
		total := 0
		for _, rt := range []cache.ResourceType{
			cache.ResourceChannel, cache.ResourceGroup, cache.ResourceMacro,
			cache.ResourceCue, cache.ResourceCueList,
		} {
			total += s.cache.Stats(rt).LiveEntries
		}
		return health.Healthy("cache operational").
			WithDetails(map[string]any{"live_entries": total})
	}))

	return s, nil
}

// GetChannelInfo returns the cached channel view, populating it from the
// console on a miss.
func (s *Service) GetChannelInfo(ctx context.Context, channel int) (string, error) {
	address := osc.GetChannel(channel)
	id := strconv.Itoa(channel)
	return s.fetchInfo(ctx, cache.ResourceChannel, address, id,
		fmt.Sprintf("/eos/out/chan/%d", channel))
}

// GetGroupInfo returns the cached group view.
func (s *Service) GetGroupInfo(ctx context.Context, group int) (string, error) {
	address := osc.GetGroup(group)
	id := strconv.Itoa(group)
	return s.fetchInfo(ctx, cache.ResourceGroup, address, id,
		fmt.Sprintf("/eos/out/group/%d", group))
}

// GetMacroInfo returns the cached macro view.
func (s *Service) GetMacroInfo(ctx context.Context, macro int) (string, error) {
	address := osc.GetMacro(macro)
	id := strconv.Itoa(macro)
	return s.fetchInfo(ctx, cache.ResourceMacro, address, id,
		fmt.Sprintf("/eos/out/macro/%d", macro))
}

// GetCueInfo returns the cached view of one cue in a list.
func (s *Service) GetCueInfo(ctx context.Context, list int, cue string) (string, error) {
	address := osc.GetCue(list, cue)
	id := fmt.Sprintf("%d/%s", list, cue)
	return s.fetchInfo(ctx, cache.ResourceCue, address, id,
		fmt.Sprintf("/eos/out/cue/%d", list))
}

// fetchInfo is the shared read path: cache key from the request address,
// resource tags at both granularities, the exact reply address, and the
// broadcast prefix the console announces changes under.
func (s *Service) fetchInfo(ctx context.Context, rt cache.ResourceType, address, id, broadcastPrefix string) (string, error) {
	key := cache.Key(cache.KeyRequest{Address: address})

	v, err := s.cache.Fetch(ctx, rt, key,
		func(ctx context.Context) (any, error) {
			msg, err := s.console.Request(ctx, address)
			if err != nil {
				return nil, err
			}
			return renderMessage(msg), nil
		},
		cache.WithTags(
			cache.ResourceTag(rt),
			cache.ResourceInstanceTag(rt, id),
			cache.AddressTag(osc.ReplyAddress(address)),
		),
		cache.WithPrefixTags(cache.PrefixTag(broadcastPrefix)),
	)
	if err != nil {
		return "", err
	}

	text, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("tools: unexpected cached value type %T", v)
	}
	return text, nil
}

// SetChannelLevel commands a channel level and invalidates the channel's
// cached views before any broadcast can arrive.
func (s *Service) SetChannelLevel(ctx context.Context, channel int, level float64) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("tools: level %v out of range 0-100", level)
	}
	if err := s.console.Send(ctx, osc.SetChannelLevel(channel), float32(level)); err != nil {
		return err
	}
	removed := s.cache.NotifyResourceChange(cache.ResourceChannel, strconv.Itoa(channel))
	s.log.Debug("channel level set",
		zap.Int("channel", channel),
		zap.Float64("level", level),
		zap.Int("invalidated", removed))
	return nil
}

// FireMacro fires a macro and invalidates its cached views.
func (s *Service) FireMacro(ctx context.Context, macro int) error {
	if err := s.console.Send(ctx, osc.FireMacro(macro)); err != nil {
		return err
	}
	removed := s.cache.NotifyResourceChange(cache.ResourceMacro, strconv.Itoa(macro))
	s.log.Debug("macro fired",
		zap.Int("macro", macro),
		zap.Int("invalidated", removed))
	return nil
}

// CacheStats renders the counters for one resource type.
func (s *Service) CacheStats(rt cache.ResourceType) (string, error) {
	if !rt.Valid() {
		return "", fmt.Errorf("%w: %q", cache.ErrInvalidResourceType, rt)
	}
	stats := s.cache.Stats(rt)
	out, err := json.Marshal(map[string]any{
		"resource_type": string(rt),
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"live_entries":  stats.LiveEntries,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ClearCache drops every cached entry and resets all counters.
func (s *Service) ClearCache() string {
	s.cache.Clear()
	s.log.Info("cache cleared")
	return "cache cleared"
}

// Health runs the registered checks and renders the aggregate.
func (s *Service) Health(ctx context.Context) (string, error) {
	results := s.checks.CheckAll(ctx)

	components := make(map[string]any, len(results))
	for name, r := range results {
		component := map[string]any{
			"status":  r.Status.String(),
			"message": r.Message,
		}
		if r.Error != nil {
			component["error"] = r.Error.Error()
		}
		if r.Details != nil {
			component["details"] = r.Details
		}
		components[name] = component
	}

	out, err := json.Marshal(map[string]any{
		"status":     health.OverallStatus(results).String(),
		"components": components,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// renderMessage flattens a console reply into display text. Eos "get"
// replies carry the record fields as positional arguments.
func renderMessage(msg osc.Message) string {
	out := map[string]any{"address": msg.Address}
	if len(msg.Args) > 0 {
		values := make([]any, len(msg.Args))
		for i, a := range msg.Args {
			values[i] = a.Value
		}
		out["args"] = values
	}
	data, err := json.Marshal(out)
	if err != nil {
		return msg.String()
	}
	return string(data)
}
