package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client neo4jpg serve --url bolt://localhost:7687")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "neo4jpg-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to neo4jpg MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools            - List available tools")
	fmt.Println("  /server [name]    - Use a catalog server for later queries")
	fmt.Println("  /params <literal> - Set query parameters, e.g. {'name': 'Ann'}")
	fmt.Println("  /limit <n>        - Limit returned records")
	fmt.Println("  /profile          - Show the resolved connection profile")
	fmt.Println("  /exit             - Exit the client")
	fmt.Println("  <cypher>          - Run a Cypher query")
	fmt.Println()

	var (
		server string
		params string
		limit  int
	)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/tools":
			listTools(ctx, session)

		case input == "/profile":
			callTool(ctx, session, "resolve_profile", map[string]any{"server": server})

		case strings.HasPrefix(input, "/server"):
			server = strings.TrimSpace(strings.TrimPrefix(input, "/server"))
			fmt.Printf("server = %q\n", server)

		case strings.HasPrefix(input, "/params"):
			params = strings.TrimSpace(strings.TrimPrefix(input, "/params"))
			fmt.Printf("params = %s\n", params)

		case strings.HasPrefix(input, "/limit"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(input, "/limit")))
			if err != nil || n < 0 {
				fmt.Println("limit must be a non-negative integer")
				continue
			}
			limit = n

		default:
			callTool(ctx, session, "cypher", map[string]any{
				"query":  input,
				"params": params,
				"server": server,
				"limit":  limit,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

// printResult prints cypher records one per line and anything else as JSON.
func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
		for _, content := range result.Content {
			if v, ok := content.(*mcp.TextContent); ok {
				fmt.Println(v.Text)
			}
		}
		fmt.Println()
		return
	}

	var records struct {
		Records   []string `json:"records"`
		Truncated bool     `json:"truncated"`
	}
	if raw, err := json.Marshal(result.StructuredContent); err == nil && json.Unmarshal(raw, &records) == nil && records.Records != nil {
		for _, r := range records.Records {
			fmt.Println(r)
		}
		fmt.Printf("✅ %d records", len(records.Records))
		if records.Truncated {
			fmt.Print(" (truncated)")
		}
		fmt.Println()
		fmt.Println()
		return
	}

	fmt.Printf("✅ Result: ")
	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
