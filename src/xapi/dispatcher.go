package xapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"xapi-connector/src/decoder"
	"xapi-connector/src/helpers"
	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------
// Request building
// -----------------------------------------------------------------------------

// arguments pairs values with cmd.Params. Optional parameters with a nil
// value are left out.
func (cmd Command) arguments(values []any) (map[string]any, error) {
	if len(values) != len(cmd.Params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", cmd.Name, len(cmd.Params), len(values))
	}
	if len(values) == 0 {
		return nil, nil
	}

	args := make(map[string]any, len(values))
	for i, param := range cmd.Params {
		name, optional := strings.CutSuffix(param, "?")
		if values[i] == nil {
			if optional {
				continue
			}
			return nil, fmt.Errorf("%s: argument %s is required", cmd.Name, name)
		}
		args[name] = values[i]
	}
	if cmd.Wrap != "" {
		return map[string]any{cmd.Wrap: args}, nil
	}
	return args, nil
}

// -----------------------------------------------------------------------------

// buildRequest gates on connection, then on login, and assembles the
// envelope. Stream requests carry the streamSessionId and are flat.
func (c *Client) buildRequest(cmd Command, values []any) (models.MRequest, error) {
	if !c.connector.IsConnected() {
		return models.MRequest{}, helpers.NewSocketError(helpers.MsgNotConnected, nil)
	}
	if !cmd.Anonymous && !c.session.IsAuthenticated() {
		return models.MRequest{}, helpers.NewSocketError(helpers.MsgNotLoggedIn, nil)
	}

	args, err := cmd.arguments(values)
	if err != nil {
		return models.MRequest{}, err
	}
	req := models.MRequest{Command: cmd.Name, Arguments: args}

	if cmd.Streaming {
		ssid, ok := c.session.StreamSessionID()
		if !ok {
			return models.MRequest{}, helpers.NewSocketError(helpers.MsgNotLoggedIn, nil)
		}
		req.StreamSessionID = ssid
		req.Flat = true
		return req, nil
	}

	req.CustomTag = c.newTag()
	return req, nil
}

// -----------------------------------------------------------------------------

// StreamRequest builds a subscription message for the stream connection,
// using this client's login. The command connection must still be open.
func (c *Client) StreamRequest(cmd Command, values ...any) (models.MRequest, error) {
	if !cmd.Streaming {
		return models.MRequest{}, fmt.Errorf("%s is not a streaming command", cmd.Name)
	}
	return c.buildRequest(cmd, values)
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

// execute performs one exchange and turns status=false into an ApiError.
// returnData is handed back untouched.
func (c *Client) execute(ctx context.Context, cmd Command, values []any) (models.MResponse, error) {
	if cmd.Streaming {
		return models.MResponse{}, fmt.Errorf("%s must be sent on the stream connection", cmd.Name)
	}

	req, err := c.buildRequest(cmd, values)
	if err != nil {
		return models.MResponse{}, err
	}

	resp, err := c.connector.SendAndReceive(ctx, req)
	if err != nil {
		return models.MResponse{}, err
	}

	if resp.CustomTag != "" && resp.CustomTag != req.CustomTag {
		// Responses are out of step with requests; the connection is unusable.
		_ = c.connector.Close()
		c.session.Clear()
		return models.MResponse{}, helpers.NewSocketError(
			fmt.Sprintf("response to %s carries tag %q, expected %q", cmd.Name, resp.CustomTag, req.CustomTag), nil)
	}

	if !resp.Status {
		return resp, helpers.NewApiError(resp.ErrorCode, resp.ErrorDescr)
	}
	return resp, nil
}

// -----------------------------------------------------------------------------

// run executes cmd, decodes the payload with decode (when given) and reports
// the outcome to the observer once.
func (c *Client) run(ctx context.Context, cmd Command, values []any, decode func(decoder.Payload) error) (resp models.MResponse, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCommand(cmd.Name, time.Since(start), err)
		}
	}()

	resp, err = c.execute(ctx, cmd, values)
	if err != nil || decode == nil {
		return resp, err
	}

	payload, err := decoder.Parse(resp.ReturnData)
	if err != nil {
		return resp, helpers.NewDecodeError(cmd.Name, "", err.Error())
	}
	return resp, decode(payload)
}

// -----------------------------------------------------------------------------

func callStatus(ctx context.Context, c *Client, cmd Command, values ...any) (bool, error) {
	resp, err := c.run(ctx, cmd, values, nil)
	if err != nil {
		return false, err
	}
	return resp.Status, nil
}

func callOne[T any](ctx context.Context, c *Client, cmd Command, values ...any) (T, error) {
	var out T
	_, err := c.run(ctx, cmd, values, func(p decoder.Payload) error {
		return decoder.DecodeOne(p, &out)
	})
	return out, err
}

func callMany[T any](ctx context.Context, c *Client, cmd Command, values ...any) ([]T, error) {
	var out []T
	_, err := c.run(ctx, cmd, values, func(p decoder.Payload) error {
		return decoder.DecodeMany(p, &out)
	})
	return out, err
}

// -----------------------------------------------------------------------------

// Call runs any command of the table by name with named arguments and
// returns the untyped payload, checked against the command's shape. The
// gateway uses it for commands without a dedicated endpoint.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (decoder.Payload, error) {
	cmd, ok := Lookup(name)
	if !ok {
		return decoder.Payload{}, fmt.Errorf("unknown command %q", name)
	}
	if cmd.Name == CmdLogin.Name || cmd.Name == CmdLogout.Name {
		return decoder.Payload{}, fmt.Errorf("%s changes the session, use Login or Logout", name)
	}

	values := make([]any, len(cmd.Params))
	known := make(map[string]bool, len(cmd.Params))
	for i, param := range cmd.Params {
		key := strings.TrimSuffix(param, "?")
		known[key] = true
		values[i] = args[key]
	}
	for key := range args {
		if !known[key] {
			return decoder.Payload{}, fmt.Errorf("%s does not take argument %q", name, key)
		}
	}

	var payload decoder.Payload
	_, err := c.run(ctx, cmd, values, func(p decoder.Payload) error {
		if err := checkShape(cmd, p); err != nil {
			return err
		}
		payload = p
		return nil
	})
	return payload, err
}

func checkShape(cmd Command, p decoder.Payload) error {
	switch {
	case cmd.Shape == ShapeList && p.Kind != decoder.KindList && p.Kind != decoder.KindNone:
		return helpers.NewDecodeError(cmd.Name, "", fmt.Sprintf("expected a list, got %s", p.Kind))
	case cmd.Shape == ShapeRecord && (p.Kind == decoder.KindList || p.Kind == decoder.KindNone):
		return helpers.NewDecodeError(cmd.Name, "", fmt.Sprintf("expected a record, got %s", p.Kind))
	}
	return nil
}

// -----------------------------------------------------------------------------

func omitEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
