package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session is the thin seam between this package's typed tool wrappers and
// the underlying Model-Context-Protocol transport. Production code wires an
// *mcpsdk.ClientSession; tests wire a fake.
type Session interface {
	CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error)
}

// sdkSession adapts an *mcpsdk.ClientSession to Session, flattening the
// SDK's content-block result into a plain map for this module's consumers.
type sdkSession struct {
	session *mcpsdk.ClientSession
}

// NewSDKSession wraps an established MCP client session.
func NewSDKSession(session *mcpsdk.ClientSession) Session {
	return &sdkSession{session: session}
}

func (s *sdkSession) CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	result, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("mcp call %s: %w", toolName, err)
	}
	if result.IsError {
		return nil, fmt.Errorf("mcp tool %s returned an error result", toolName)
	}

	out := make(map[string]any, len(result.Content))
	for i, block := range result.Content {
		if text, ok := block.(*mcpsdk.TextContent); ok {
			out[fmt.Sprintf("content_%d", i)] = text.Text
		}
	}
	if result.StructuredContent != nil {
		if m, ok := result.StructuredContent.(map[string]any); ok {
			for k, v := range m {
				out[k] = v
			}
		}
	}
	return out, nil
}

// Connect dials a server over transport and returns a ready Session.
func Connect(ctx context.Context, appName, appVersion string, transport mcpsdk.Transport) (Session, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: appName, Version: appVersion}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp transport: %w", err)
	}
	return NewSDKSession(session), nil
}
