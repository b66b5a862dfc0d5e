package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	logx "github.com/shopfront-core/server/pkg/logger"
)

// Dispatcher routes tool calls by name and logs their lifecycle.
type Dispatcher struct {
	tools map[string]tool.InvokableTool
	infos []*schema.ToolInfo
}

func NewDispatcher(ctx context.Context, list []tool.BaseTool) (*Dispatcher, error) {
	d := &Dispatcher{tools: make(map[string]tool.InvokableTool, len(list))}
	for _, t := range list {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s is not invokable", info.Name)
		}
		if _, dup := d.tools[info.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %s", info.Name)
		}
		d.tools[info.Name] = inv
		d.infos = append(d.infos, info)
	}
	sort.Slice(d.infos, func(i, j int) bool { return d.infos[i].Name < d.infos[j].Name })
	return d, nil
}

// Infos lists the registered tools, sorted by name, for binding to a chat model.
func (d *Dispatcher) Infos() []*schema.ToolInfo {
	return d.infos
}

// Invoke runs the named tool with JSON arguments and returns its JSON result.
func (d *Dispatcher) Invoke(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := d.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	start := time.Now()
	logx.Debug().Str("tool", name).Str("arguments", argumentsInJSON).Msg("tool start")
	out, err := t.InvokableRun(ctx, argumentsInJSON)
	if err != nil {
		logx.Warn().Err(err).Str("tool", name).Dur("elapsed", time.Since(start)).Msg("tool execution failed")
		return "", err
	}
	logx.Debug().Str("tool", name).Dur("elapsed", time.Since(start)).Msg("tool end")
	return out, nil
}
