// txcodec converts Cosmos transactions between their JSON document and
// binary wire forms, decodes transaction receipts, parses raw logs, and
// serves the same operations over gRPC.
//
// Usage:
//
//	txcodec encode      [--in FILE] [--input-format json|yaml|cbor]
//	txcodec decode      [--in FILE]
//	txcodec decode-info [--in FILE]
//	txcodec logs        [--in FILE]
//	txcodec serve       [--listen ADDR]
//
// Wire bytes are read and written as standard base64 text. Every
// command accepts --config (or TXCODEC_CONFIG), --format to pick the
// output document format, and --remote to call a running service
// instead of the in-process codec.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/config"
	"github.com/blockberries/txcodec/docfmt"
	txgrpc "github.com/blockberries/txcodec/grpc"
	"github.com/blockberries/txcodec/local"
	"github.com/blockberries/txcodec/server"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	configPath  string
	in          string
	format      string
	inputFormat string
	remote      string
	listen      string
	timeout     time.Duration
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env) error
}

var commands = map[string]command{
	"encode":      {"convert a transaction document to base64 wire bytes", runEncode},
	"decode":      {"convert base64 transaction wire bytes to a document", runDecode},
	"decode-info": {"convert a base64 TxResponse to a receipt document", runDecodeInfo},
	"logs":        {"parse a raw_log into per-message event indexes", runLogs},
	"serve":       {"serve the codec over gRPC", runServe},
}

// env is what a command runs against.
type env struct {
	opts   options
	cfg    *config.Config
	log    zerolog.Logger
	conn   txcodec.Connection
	stdin  io.Reader
	stdout io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return errors.New("no command given")
		}
		return nil
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	var opts options
	fs := pflag.NewFlagSet("txcodec "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvVar+")")
	fs.StringVar(&opts.in, "in", "", "read input from this file instead of stdin")
	fs.StringVarP(&opts.format, "format", "f", "", "output document format: json, yaml or cbor (default from config)")
	fs.StringVar(&opts.inputFormat, "input-format", string(docfmt.JSON), "input document format of encode")
	fs.StringVar(&opts.remote, "remote", "", "address of a running txcodec service to call")
	fs.StringVar(&opts.listen, "listen", "", "gRPC listen address of serve (default from config)")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-call timeout")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.listen != "" {
		cfg.Listen = opts.listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e := &env{opts: opts, cfg: cfg, log: cfg.Logger(stderr), stdin: stdin, stdout: stdout}
	if name != "serve" {
		conn, err := e.connect()
		if err != nil {
			return err
		}
		defer conn.Close()
		e.conn = conn
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return cmd.run(ctx, e)
}

// loadConfig reads the file named by path or TXCODEC_CONFIG. With
// neither set the defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvVar) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func (e *env) connect() (txcodec.Connection, error) {
	if e.opts.remote != "" {
		ctx, cancel := context.WithTimeout(context.Background(), e.opts.timeout)
		defer cancel()
		client, err := txgrpc.Dial(ctx, e.opts.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	reg, err := e.cfg.Registry()
	if err != nil {
		return nil, err
	}
	return local.NewConnection(reg,
		server.WithLogger(e.log),
		server.WithMaxMessageBytes(e.cfg.Codec.MaxMessageBytes),
	), nil
}

func (e *env) input() ([]byte, error) {
	if e.opts.in == "" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(e.opts.in)
}

func (e *env) base64Input() ([]byte, error) {
	data, err := e.input()
	if err != nil {
		return nil, err
	}
	bz, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("input is not base64: %w", err)
	}
	return bz, nil
}

func (e *env) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opts.timeout)
}

// print writes v in the configured output format.
func (e *env) print(v any) error {
	out, err := docfmt.MarshalIndent(e.cfg.OutputFormat(), v)
	if err != nil {
		return err
	}
	if _, err := e.stdout.Write(out); err != nil {
		return err
	}
	if e.cfg.OutputFormat() == docfmt.JSON {
		_, err = io.WriteString(e.stdout, "\n")
	}
	return err
}

// printJSONDocument re-renders a JSON document in the output format.
func (e *env) printJSONDocument(data []byte) error {
	doc, err := docfmt.Unmarshal(docfmt.JSON, data)
	if err != nil {
		return err
	}
	return e.print(doc)
}

func runEncode(ctx context.Context, e *env) error {
	data, err := e.input()
	if err != nil {
		return err
	}
	inFormat, err := docfmt.ParseFormat(e.opts.inputFormat)
	if err != nil {
		return err
	}
	if inFormat != docfmt.JSON {
		doc, err := docfmt.Unmarshal(inFormat, data)
		if err != nil {
			return err
		}
		if data, err = docfmt.Marshal(docfmt.JSON, doc); err != nil {
			return err
		}
	}

	ctx, cancel := e.call(ctx)
	defer cancel()
	resp, err := e.conn.EncodeTx(ctx, txcodec.EncodeTxRequest{Document: data})
	if err != nil {
		return err
	}
	return e.print(map[string]any{
		"tx_bytes": base64.StdEncoding.EncodeToString(resp.TxBytes),
		"txhash":   resp.TxHash,
	})
}

func runDecode(ctx context.Context, e *env) error {
	bz, err := e.base64Input()
	if err != nil {
		return err
	}
	ctx, cancel := e.call(ctx)
	defer cancel()
	resp, err := e.conn.DecodeTx(ctx, txcodec.DecodeTxRequest{TxBytes: bz})
	if err != nil {
		return err
	}
	e.log.Info().Str("txhash", resp.TxHash).Msg("decoded transaction")
	return e.printJSONDocument(resp.Document)
}

func runDecodeInfo(ctx context.Context, e *env) error {
	bz, err := e.base64Input()
	if err != nil {
		return err
	}
	ctx, cancel := e.call(ctx)
	defer cancel()
	resp, err := e.conn.DecodeTxInfo(ctx, txcodec.DecodeTxInfoRequest{Response: bz})
	if err != nil {
		return err
	}
	if resp.Failed {
		e.log.Warn().Msg("transaction failed at execution")
	}
	return e.printJSONDocument(resp.Document)
}

func runLogs(ctx context.Context, e *env) error {
	data, err := e.input()
	if err != nil {
		return err
	}
	ctx, cancel := e.call(ctx)
	defer cancel()
	resp, err := e.conn.ParseLogs(ctx, txcodec.ParseLogsRequest{RawLog: string(data)})
	if err != nil {
		return err
	}
	for _, msg := range resp.Errors {
		e.log.Warn().Str("record", msg).Msg("skipped malformed log record")
	}
	return e.print(logsDocument(resp))
}

// logsDocument renders parsed logs with each event index nested as
// type → key → values.
func logsDocument(resp txcodec.ParseLogsResponse) map[string]any {
	logs := make([]any, 0, len(resp.Logs))
	for _, l := range resp.Logs {
		index := map[string]any{}
		for _, entry := range l.Index {
			byKey, ok := index[entry.Type].(map[string]any)
			if !ok {
				byKey = map[string]any{}
				index[entry.Type] = byKey
			}
			values := make([]any, len(entry.Values))
			for i, v := range entry.Values {
				values[i] = v
			}
			byKey[entry.Key] = values
		}
		logs = append(logs, map[string]any{
			"msg_index": int64(l.MsgIndex),
			"log":       l.Log,
			"events":    index,
		})
	}
	doc := map[string]any{"has_logs": resp.HasLogs, "logs": logs}
	if len(resp.Errors) > 0 {
		errs := make([]any, len(resp.Errors))
		for i, msg := range resp.Errors {
			errs[i] = msg
		}
		doc["errors"] = errs
	}
	return doc
}

func runServe(ctx context.Context, e *env) error {
	reg, err := e.cfg.Registry()
	if err != nil {
		return err
	}
	svc := server.New(reg,
		server.WithLogger(e.log),
		server.WithMaxMessageBytes(e.cfg.Codec.MaxMessageBytes),
	)

	lis, err := net.Listen("tcp", e.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", e.cfg.Listen, err)
	}
	gs := grpc.NewServer(
		grpc.UnaryInterceptor(txgrpc.LoggingInterceptor(e.log)),
		grpc.MaxRecvMsgSize(e.cfg.Codec.MaxMessageBytes+1024),
	)
	txgrpc.NewGRPCServer(svc).Register(gs)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()
	e.log.Info().
		Str("listen", lis.Addr().String()).
		Strs("msgs", reg.Msgs.TypeURLs()).
		Msg("txcodec service started")

	select {
	case err := <-errCh:
		_ = svc.Close()
		return err
	case <-ctx.Done():
	}
	e.log.Info().Msg("shutting down")
	gs.GracefulStop()
	return svc.Close()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: txcodec <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range []string{"encode", "decode", "decode-info", "logs", "serve"} {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'txcodec <command> --help' for the flags of a command.")
}
