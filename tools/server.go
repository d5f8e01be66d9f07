package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Nairolf138/eos-mcp/cache"
)

// NewServer assembles the MCP server and registers every tool against svc.
func NewServer(svc *Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Eos MCP Server",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	registerReadTools(s, svc)
	registerCommandTools(s, svc)
	registerAdminTools(s, svc)

	return s
}

func registerReadTools(s *server.MCPServer, svc *Service) {
	readOnly := mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		IdempotentHint:  mcp.ToBoolPtr(true),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}

	getChannel := mcp.NewTool("get_channel_info",
		mcp.WithDescription("Get channel information from the console"),
		mcp.WithNumber("channel",
			mcp.Required(),
			mcp.Description("Channel number"),
		),
		mcp.WithToolAnnotation(readOnly),
	)
	s.AddTool(getChannel, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		channel, err := intArg(request, "channel")
		if err != nil {
			return nil, err
		}
		info, err := svc.GetChannelInfo(ctx, channel)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(info), nil
	})

	getGroup := mcp.NewTool("get_group_info",
		mcp.WithDescription("Get group information from the console"),
		mcp.WithNumber("group",
			mcp.Required(),
			mcp.Description("Group number"),
		),
		mcp.WithToolAnnotation(readOnly),
	)
	s.AddTool(getGroup, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		group, err := intArg(request, "group")
		if err != nil {
			return nil, err
		}
		info, err := svc.GetGroupInfo(ctx, group)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(info), nil
	})

	getMacro := mcp.NewTool("get_macro_info",
		mcp.WithDescription("Get macro information from the console"),
		mcp.WithNumber("macro",
			mcp.Required(),
			mcp.Description("Macro number"),
		),
		mcp.WithToolAnnotation(readOnly),
	)
	s.AddTool(getMacro, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		macro, err := intArg(request, "macro")
		if err != nil {
			return nil, err
		}
		info, err := svc.GetMacroInfo(ctx, macro)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(info), nil
	})

	getCue := mcp.NewTool("get_cue_info",
		mcp.WithDescription("Get information about one cue in a cue list"),
		mcp.WithNumber("list",
			mcp.Required(),
			mcp.Description("Cue list number"),
		),
		mcp.WithString("cue",
			mcp.Required(),
			mcp.Description("Cue number, e.g. 10 or 10.5"),
		),
		mcp.WithToolAnnotation(readOnly),
	)
	s.AddTool(getCue, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := intArg(request, "list")
		if err != nil {
			return nil, err
		}
		cueNum, err := stringArg(request, "cue")
		if err != nil {
			return nil, err
		}
		info, err := svc.GetCueInfo(ctx, list, cueNum)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(info), nil
	})
}

func registerCommandTools(s *server.MCPServer, svc *Service) {
	mutating := mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(true),
		IdempotentHint:  mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}

	setLevel := mcp.NewTool("set_channel_level",
		mcp.WithDescription("Set a channel level on the console"),
		mcp.WithNumber("channel",
			mcp.Required(),
			mcp.Description("Channel number"),
		),
		mcp.WithNumber("level",
			mcp.Required(),
			mcp.Description("Level percentage 0-100"),
		),
		mcp.WithToolAnnotation(mutating),
	)
	s.AddTool(setLevel, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		channel, err := intArg(request, "channel")
		if err != nil {
			return nil, err
		}
		level, err := floatArg(request, "level")
		if err != nil {
			return nil, err
		}
		if err := svc.SetChannelLevel(ctx, channel, level); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("channel %d set to %v", channel, level)), nil
	})

	fireMacro := mcp.NewTool("fire_macro",
		mcp.WithDescription("Fire a macro on the console"),
		mcp.WithNumber("macro",
			mcp.Required(),
			mcp.Description("Macro number"),
		),
		mcp.WithToolAnnotation(mutating),
	)
	s.AddTool(fireMacro, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		macro, err := intArg(request, "macro")
		if err != nil {
			return nil, err
		}
		if err := svc.FireMacro(ctx, macro); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("macro %d fired", macro)), nil
	})
}

func registerAdminTools(s *server.MCPServer, svc *Service) {
	stats := mcp.NewTool("cache_stats",
		mcp.WithDescription("Get cache hit/miss statistics for one resource type"),
		mcp.WithString("resource_type",
			mcp.Required(),
			mcp.Description("Resource type, e.g. channel, group, macro, cue"),
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:   mcp.ToBoolPtr(true),
			IdempotentHint: mcp.ToBoolPtr(true),
		}),
	)
	s.AddTool(stats, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rt, err := stringArg(request, "resource_type")
		if err != nil {
			return nil, err
		}
		out, err := svc.CacheStats(cache.ResourceType(rt))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})

	clear := mcp.NewTool("clear_cache",
		mcp.WithDescription("Drop every cached console view and reset statistics"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			DestructiveHint: mcp.ToBoolPtr(true),
			IdempotentHint:  mcp.ToBoolPtr(true),
		}),
	)
	s.AddTool(clear, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(svc.ClearCache()), nil
	})

	healthTool := mcp.NewTool("console_health",
		mcp.WithDescription("Check console connectivity and cache health"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:   mcp.ToBoolPtr(true),
			IdempotentHint: mcp.ToBoolPtr(true),
		}),
	)
	s.AddTool(healthTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := svc.Health(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func intArg(request mcp.CallToolRequest, name string) (int, error) {
	v, ok := request.GetArguments()[name]
	if !ok {
		return 0, fmt.Errorf("%s must be present", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return int(f), nil
}

func floatArg(request mcp.CallToolRequest, name string) (float64, error) {
	v, ok := request.GetArguments()[name]
	if !ok {
		return 0, fmt.Errorf("%s must be present", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return f, nil
}

func stringArg(request mcp.CallToolRequest, name string) (string, error) {
	v, ok := request.GetArguments()[name]
	if !ok {
		return "", fmt.Errorf("%s must be present", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s, nil
}
