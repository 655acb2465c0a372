package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"promptd/pkg/types"
)

// apiClient is a thin HTTP client for a running daemon.
type apiClient struct {
	base string
	hc   *http.Client
}

func newClient(cmd *cobra.Command) *apiClient {
	addr, _ := cmd.Flags().GetString("addr")
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		if strings.HasPrefix(base, ":") {
			base = "127.0.0.1" + base
		}
		base = "http://" + base
	}
	return &apiClient{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: 10 * time.Second}}
}

func (c *apiClient) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr types.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func buildSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit [text]",
		Short: "Queue a prompt (accepted only while the surface is generating)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				text = string(b)
			}
			var resp types.SubmitResponse
			if err := newClient(cmd).do(http.MethodPost, "/queue", types.SubmitRequest{Text: text}, &resp); err != nil {
				return err
			}
			fmt.Printf("queued at %d (%d waiting)\n", resp.Index, resp.Length)
			return nil
		},
	}
}

func buildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the queue in send order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp types.QueueResponse
			if err := newClient(cmd).do(http.MethodGet, "/queue", nil, &resp); err != nil {
				return err
			}
			if len(resp.Items) == 0 {
				fmt.Println("queue empty")
				return nil
			}
			for _, it := range resp.Items {
				fmt.Printf("%3d  %s\n", it.Index, it.Text)
			}
			return nil
		},
	}
}

func parseIndexArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one argument: the queue index")
	}
	return strconv.Atoi(args[0])
}

func buildDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <index>",
		Aliases: []string{"rm"},
		Short:   "Remove a queued prompt without sending it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndexArg(args)
			if err != nil {
				return err
			}
			return newClient(cmd).do(http.MethodDelete, fmt.Sprintf("/queue/%d", index), nil, nil)
		},
	}
}

func buildEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index>",
		Short: "Pull a queued prompt back into the chat input for reworking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndexArg(args)
			if err != nil {
				return err
			}
			return newClient(cmd).do(http.MethodPost, fmt.Sprintf("/queue/%d/edit", index), nil, nil)
		},
	}
}

func buildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's verdict, attachment, and queue length",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp types.StatusResponse
			if err := newClient(cmd).do(http.MethodGet, "/status", nil, &resp); err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}

func buildDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug on|off",
		Short: "Toggle verbose dispatch logging on the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on", "true", "1":
				enabled = true
			case "off", "false", "0":
				enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return newClient(cmd).do(http.MethodPut, "/debug", types.DebugRequest{Enabled: enabled}, nil)
		},
	}
}
