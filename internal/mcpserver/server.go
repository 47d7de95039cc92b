// Package mcpserver exposes an opened bin as MCP tools, so agents can walk
// source references without parsing bins themselves.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/describe"
	"github.com/agentic-research/avbmatch/internal/graph"
	"github.com/agentic-research/avbmatch/internal/markers"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/agentic-research/avbmatch/internal/timeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0"

// Opener opens the bin at path.
type Opener func(path string) (*bin.Bin, error)

// Options configures a Server.
type Options struct {
	MaxHops          int
	IncludeReference bool
}

// Server serves one bin. The bin can be reopened in place with the reload
// tool; a tool call in flight keeps the bin and mob table it started with,
// and a replaced snapshot is closed when the last such call finishes.
type Server struct {
	path string
	open Opener
	opts Options

	mobs *graph.HotSwapGraph

	mu  sync.RWMutex
	bin *bin.Bin
}

// New opens the bin at path.
func New(path string, open Opener, opts Options) (*Server, error) {
	if opts.MaxHops <= 0 {
		opts.MaxHops = sourceref.DefaultMaxHops
	}
	b, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Server{path: path, open: open, opts: opts, bin: b, mobs: graph.NewHotSwapGraph(b.Mobs)}, nil
}

// acquire returns the current bin with its mob table pinned until release.
func (s *Server) acquire() (*bin.Bin, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, release := s.mobs.Acquire()
	b := s.bin
	return b, func() {
		if err := release(); err != nil {
			slog.Warn("Closing previous bin failed", "path", s.path, "error", err)
		}
	}
}

// Reload reopens the bin from disk and swaps it in.
func (s *Server) Reload() error {
	b, err := s.open(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mobs.Swap(b.Mobs); err != nil {
		slog.Warn("Closing previous bin failed", "path", s.path, "error", err)
	}
	s.bin = b
	return nil
}

// Close releases the bin.
func (s *Server) Close() error {
	return s.mobs.Swap(graph.NewMemoryStore())
}

// MCPServer builds the MCP server with every tool registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("avbmatch", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("bin_info",
		mcp.WithDescription("Name, display mode and mob counts per role of the served bin"),
	), s.handleBinInfo)

	srv.AddTool(mcp.NewTool("bin_roles",
		mcp.WithDescription("List the bin's mobs, optionally only those of one role"),
		mcp.WithString("role", mcp.Description("Role slug such as timeline, master_clip, subclip or source_mob")),
	), s.handleBinRoles)

	srv.AddTool(mcp.NewTool("source_chain",
		mcp.WithDescription("Walk the chain of source references under a mob's track"),
		mcp.WithString("mob_id", mcp.Required(), mcp.Description("Mob to start from")),
		mcp.WithString("track", mcp.Description("Track label such as V1 or A2 (default: primary track)")),
		mcp.WithNumber("offset", mcp.Description("Frame offset into the track (default 0)")),
		mcp.WithString("filter", mcp.Description("all, file or physical (default all)")),
	), s.handleSourceChain)

	srv.AddTool(mcp.NewTool("matchback",
		mcp.WithDescription("Match a mob back to its master clip, source mob, physical source and source timecode"),
		mcp.WithString("mob_id", mcp.Required(), mcp.Description("Mob to match back")),
	), s.handleMatchback)

	srv.AddTool(mcp.NewTool("referrers",
		mcp.WithDescription("List the mobs whose clips reference a mob"),
		mcp.WithString("mob_id", mcp.Required(), mcp.Description("Referenced mob")),
	), s.handleReferrers)

	srv.AddTool(mcp.NewTool("markers",
		mcp.WithDescription("List the markers on a mob's track"),
		mcp.WithString("mob_id", mcp.Required(), mcp.Description("Mob holding the track")),
		mcp.WithString("track", mcp.Description("Track label (default: primary track)")),
	), s.handleMarkers)

	srv.AddTool(mcp.NewTool("reload",
		mcp.WithDescription("Reopen the bin from disk"),
	), s.handleReload)

	return srv
}

// Serve runs the MCP server over stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.MCPServer())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// mob looks up the mob_id argument in a pinned bin. release must be
// called even when err is set.
func (s *Server) mob(req mcp.CallToolRequest) (b *bin.Bin, m *avb.Mob, release func(), err error) {
	b, release = s.acquire()
	id, err := req.RequireString("mob_id")
	if err != nil {
		return nil, nil, release, err
	}
	m, err = b.FindByID(avb.MobID(id))
	if err != nil {
		return nil, nil, release, fmt.Errorf("mob %s: %w", id, err)
	}
	return b, m, release, nil
}

func trackOf(m *avb.Mob, label string) (*avb.Track, error) {
	if label == "" {
		return timeline.PrimaryTrack(m)
	}
	t, ok := timeline.TrackByLabel(m, label)
	if !ok {
		return nil, fmt.Errorf("%s has no track %s (has %s)", m.Name, label, timeline.TrackLabels(m.Tracks))
	}
	return t, nil
}

type binInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	DisplayMode string         `json:"display_mode"`
	Items       int            `json:"items"`
	Visible     int            `json:"visible"`
	Roles       map[string]int `json:"roles"`
}

func (s *Server) handleBinInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, release := s.acquire()
	defer release()
	info := binInfo{
		Name:        b.Name,
		Version:     b.Version,
		DisplayMode: b.DisplayMode.String(),
		Items:       len(b.Items),
		Visible:     len(b.Visible(s.opts.IncludeReference)),
		Roles:       map[string]int{},
	}
	for _, role := range classify.Roles {
		if n := len(b.ByRole(role, s.opts.IncludeReference)); n > 0 {
			info.Roles[role.Slug()] = n
		}
	}
	return jsonResult(info)
}

func (s *Server) handleBinRoles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, release := s.acquire()
	defer release()
	slug := req.GetString("role", "")

	mobs := b.Filter(s.opts.IncludeReference, func(*avb.Mob) bool { return true })
	if slug != "" {
		role, ok := roleBySlug(slug)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown role %q", slug)), nil
		}
		mobs = b.ByRole(role, s.opts.IncludeReference)
	}

	out := make([]describe.Mob, 0, len(mobs))
	for _, m := range mobs {
		out = append(out, describe.MobOf(m))
	}
	return jsonResult(out)
}

func roleBySlug(slug string) (classify.Role, bool) {
	for _, r := range classify.Roles {
		if r.Slug() == slug {
			return r, true
		}
	}
	return classify.RoleUnknown, false
}

func (s *Server) handleSourceChain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, m, release, err := s.mob(req)
	defer release()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	track, err := trackOf(m, req.GetString("track", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter, err := describe.ParseFilter(req.GetString("filter", "all"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chain, err := describe.ChainOf(b, track, filter,
		sourceref.WithOffset(int64(req.GetInt("offset", 0))),
		sourceref.WithMaxHops(s.opts.MaxHops),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(chain)
}

func (s *Server) handleMatchback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, m, release, err := s.mob(req)
	defer release()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mb, err := describe.MatchbackOf(b, m, s.opts.MaxHops)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mb)
}

func (s *Server) handleReferrers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, m, release, err := s.mob(req)
	defer release()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := b.Mobs.Referrers(m.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]describe.Mob, 0, len(ids))
	for _, id := range ids {
		ref, err := b.FindByID(id)
		if err != nil {
			slog.Debug("Skipping referrer", "mob_id", id, "error", err)
			continue
		}
		out = append(out, describe.MobOf(ref))
	}
	return jsonResult(out)
}

func (s *Server) handleMarkers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, m, release, err := s.mob(req)
	defer release()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	track, err := trackOf(m, req.GetString("track", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := markers.FromTrack(track, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if list == nil {
		list = []markers.Info{}
	}
	return jsonResult(list)
}

func (s *Server) handleReload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.Reload(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, release := s.acquire()
	defer release()
	return mcp.NewToolResultText(fmt.Sprintf("Reloaded %s (%d items)", b.Name, len(b.Items))), nil
}
