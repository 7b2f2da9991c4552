package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/janggi-game-server/api"
	"github.com/beka-birhanu/janggi-game-server/config"
	"github.com/beka-birhanu/janggi-game-server/replay"
	"github.com/beka-birhanu/janggi-game-server/service"
	"github.com/beka-birhanu/janggi-game-server/transport"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// Global variables for dependencies
var (
	grpcConnListener net.Listener
	grpcServer       *grpc.Server
	httpServer       *http.Server
	tcpServer        *transport.TCPServer
	replayStore      *replay.FileStore
	lobby            *service.Lobby
	appLogger        general_i.Logger
)

func initReplayStore() {
	store, err := replay.NewFileStore(config.Envs.ReplayDir)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating replay store: %v", err))
		os.Exit(1)
	}
	replayStore = store
	appLogger.Info(fmt.Sprintf("Replay store initialized at %s", store.Dir()))
}

func initLobby() {
	lobbyLogger, err := logger.New("LOBBY", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating lobby logger: %v", err))
		os.Exit(1)
	}
	roomLogger, err := logger.New("ROOM", config.ColorMagenta, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating room logger: %v", err))
		os.Exit(1)
	}
	l, err := service.NewLobby(
		&service.Config{
			Replays:     replayStore,
			Logger:      lobbyLogger,
			RoomLogger:  roomLogger,
			MaxCapacity: config.Envs.MaxRoomCapacity,
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating lobby: %v", err))
		os.Exit(1)
	}
	lobby = l
	appLogger.Info("Lobby initialized")
}

func initTCPServer() {
	tcpLogger, err := logger.New("TCP", config.ColorBlue, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating TCP logger: %v", err))
		os.Exit(1)
	}
	server, err := transport.NewTCPServer(
		&transport.Config{
			Addr:         fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.TCPPort),
			Lobby:        lobby,
			OutboxSize:   config.Envs.OutboxSize,
			MaxLineBytes: config.Envs.MaxLineBytes,
			Logger:       tcpLogger,
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating TCP server: %v", err))
		os.Exit(1)
	}
	tcpServer = server
	appLogger.Info("TCP server initialized")
}

func initHTTPServer() {
	wsLogger, err := logger.New("WS", config.ColorYellow, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating WebSocket logger: %v", err))
		os.Exit(1)
	}
	ws := transport.NewWSHandler(&transport.Config{
		Lobby:        lobby,
		OutboxSize:   config.Envs.OutboxSize,
		MaxLineBytes: config.Envs.MaxLineBytes,
		Logger:       wsLogger,
	})
	httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.HTTPPort),
		Handler:           transport.NewRouter(lobby, ws, wsLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	appLogger.Info("HTTP server initialized")
}

func initAdminController() {
	adminLogger, err := logger.New("ADMIN", config.ColorWhite, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating admin logger: %v", err))
		os.Exit(1)
	}
	grpcServer = grpc.NewServer()
	if err := api.RegisterNewAdminServer(grpcServer, lobby, adminLogger); err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering admin controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Admin controller initialized")
}

func serve(cmd *cobra.Command, _ []string) error {
	initReplayStore()
	initLobby()
	initTCPServer()
	initHTTPServer()
	initAdminController()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	addr := fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.GrpcPort)
	grpcConnListener, err = net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}

	fatal := make(chan error, 1)
	go func() {
		appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", addr))
		if err := grpcServer.Serve(grpcConnListener); err != nil {
			appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
		}
	}()
	go func() {
		appLogger.Info(fmt.Sprintf("Serving HTTP at: %s", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Serving HTTP: %v", err))
		}
	}()
	go func() {
		if err := tcpServer.Serve(); err != nil {
			fatal <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down")
	case err = <-fatal:
		appLogger.Error(fmt.Sprintf("Serving TCP: %v", err))
	}

	lobby.StopAll()
	if stopErr := tcpServer.Stop(); stopErr != nil {
		appLogger.Warning(fmt.Sprintf("Stopping TCP server: %v", stopErr))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if stopErr := httpServer.Shutdown(shutdownCtx); stopErr != nil {
		appLogger.Warning(fmt.Sprintf("Stopping HTTP server: %v", stopErr))
	}
	grpcServer.GracefulStop()
	return err
}

func showReplay(cmd *cobra.Command, args []string) error {
	replayLogger, err := logger.New("REPLAY", config.ColorCyan, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "creating replay logger")
	}
	tokens, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	to, _ := cmd.Flags().GetInt("to")
	if to < 0 || to > len(tokens) {
		to = len(tokens)
	}

	player := replay.NewPlayer(tokens)
	if err := player.Seek(to); err != nil {
		return errors.Wrapf(err, "replaying %s", args[0])
	}
	replayLogger.Info(fmt.Sprintf("%s: position %d of %d", args[0], player.Index(), player.Len()))
	fmt.Fprint(cmd.OutOrStdout(), replay.Render(player.Logic()))
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "janggi-game-server",
		Short:         "Multiplayer server for the 4x3 capture game",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept clients over TCP, WebSocket and the admin gRPC API",
		RunE:  serve,
	}
	serveCmd.Flags().IntVar(&config.Envs.TCPPort, "tcp-port", config.Envs.TCPPort, "line protocol port")
	serveCmd.Flags().IntVar(&config.Envs.HTTPPort, "http-port", config.Envs.HTTPPort, "WebSocket and HTTP port")
	serveCmd.Flags().IntVar(&config.Envs.GrpcPort, "grpc-port", config.Envs.GrpcPort, "admin gRPC port")
	serveCmd.Flags().StringVar(&config.Envs.ReplayDir, "replay-dir", config.Envs.ReplayDir, "directory for replay files")

	replayCmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Print the position reached by a replay file",
		Args:  cobra.ExactArgs(1),
		RunE:  showReplay,
	}
	replayCmd.Flags().Int("to", -1, "number of tokens to apply; all when negative")

	root.AddCommand(serveCmd, replayCmd)
	return root
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	if err := newRootCmd().Execute(); err != nil {
		appLogger.Error(err.Error())
		os.Exit(1)
	}
}
