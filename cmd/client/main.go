// Command client is the terminal client for the poker platform. It signs
// in against the HTTP API, fetches the room summary once, then keeps the
// local table view synchronized with the server over a WebSocket session.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"poker-platform/client/internal/api"
	"poker-platform/client/internal/auth"
	"poker-platform/client/internal/connection"
	"poker-platform/client/internal/protocol"
	"poker-platform/client/internal/session"
	"poker-platform/client/internal/validation"
	"poker-platform/client/internal/view"
)

var (
	roomID     = flag.String("room", "", "Room ID to join")
	username   = flag.String("username", "", "Username (prompted if empty)")
	password   = flag.String("password", "", "Password (prompted if empty)")
	doRegister = flag.Bool("register", false, "Register a new account before logging in")
	listRooms  = flag.Bool("list", false, "List rooms and exit")
	createRoom = flag.String("create", "", "Create a room with the given name, then join it")
)

func main() {
	flag.Parse()
	cfg := LoadConfig()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := api.New(cfg.APIBaseURL)
	if err != nil {
		logger.Error("client setup failed", "error", err)
		os.Exit(1)
	}

	if err := client.Health(ctx); err != nil {
		logger.Error("server unreachable", "url", cfg.APIBaseURL, "error", err)
		os.Exit(1)
	}

	identity, err := signIn(ctx, client, logger)
	if err != nil {
		logger.Error("sign-in failed", "error", err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Signed in as %s", identity.Username)

	if *listRooms {
		printRooms(ctx, client, logger)
		return
	}

	room, err := pickRoom(ctx, client, logger)
	if err != nil {
		os.Exit(1)
	}

	runSession(ctx, cfg, client, identity, *room, logger)
}

// signIn resolves authentication before any session construction: register
// and/or log in as requested, then gate on the guard.
func signIn(ctx context.Context, client *api.Client, logger *slog.Logger) (auth.Identity, error) {
	user := *username
	if user == "" {
		user, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Username").Show()
		user = strings.TrimSpace(user)
	}
	pass := *password
	if pass == "" {
		pass, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Password").WithMask("*").Show()
	}

	if err := validation.ValidateUsername(user); err != nil {
		return auth.Identity{}, err
	}

	if *doRegister {
		if err := validation.ValidatePassword(pass); err != nil {
			return auth.Identity{}, err
		}
		err := client.Register(ctx, user, pass)
		switch {
		case errors.Is(err, api.ErrUsernameTaken):
			logger.Warn("username already exists, logging in instead", "username", user)
		case err != nil:
			return auth.Identity{}, err
		default:
			pterm.Success.Printfln("Registered %s", user)
		}
	}

	if err := client.Login(ctx, user, pass); err != nil {
		return auth.Identity{}, err
	}

	guard := auth.NewGuard()
	if err := guard.Resolve(ctx, client); err != nil {
		return auth.Identity{}, err
	}
	return guard.Admit(ctx)
}

func printRooms(ctx context.Context, client *api.Client, logger *slog.Logger) {
	rooms, err := client.Rooms(ctx)
	if err != nil {
		logger.Error("listing rooms failed", "error", err)
		return
	}
	data := pterm.TableData{{"ID", "Name", "Status", "Created by"}}
	for _, r := range rooms {
		data = append(data, []string{r.ID, r.Name, r.Status, r.CreatedBy})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// pickRoom resolves the room to join from flags: create, explicit id, or
// bail with usage.
func pickRoom(ctx context.Context, client *api.Client, logger *slog.Logger) (*api.RoomSummary, error) {
	if *createRoom != "" {
		if err := validation.ValidateRoomName(*createRoom); err != nil {
			logger.Error("invalid room name", "error", err)
			return nil, err
		}
		room, err := client.CreateRoom(ctx, *createRoom)
		if err != nil {
			logger.Error("creating room failed", "error", err)
			return nil, err
		}
		pterm.Success.Printfln("Created room %s (%s)", room.Name, room.ID)
		return room, nil
	}

	if *roomID == "" {
		err := errors.New("no room selected")
		logger.Error("pass -room <id>, -create <name>, or -list")
		return nil, err
	}

	room, err := client.Room(ctx, *roomID)
	switch {
	case errors.Is(err, api.ErrRoomNotFound):
		logger.Error("room does not exist", "room", *roomID)
		return nil, err
	case err != nil:
		logger.Error("fetching room failed", "error", err)
		return nil, err
	}
	return room, nil
}

// runSession wires the connection manager and session for one room and
// drives the render and input loops until exit.
func runSession(ctx context.Context, cfg Config, client *api.Client, identity auth.Identity, room api.RoomSummary, logger *slog.Logger) {
	manager := connection.NewManager(connection.Config{
		URL:        roomSocketURL(cfg.WSBaseURL, room.ID),
		Jar:        client.Jar(),
		RetryDelay: cfg.ReconnectDelay,
		MaxRetries: cfg.MaxReconnects,
	})
	if err := manager.Start(); err != nil {
		logger.Error("connection start failed", "error", err)
		return
	}

	sess := session.New(session.Config{
		Username: identity.Username,
		Room:     room,
		Conn:     manager,
	})

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sess.Run(sessCtx)

	area, err := pterm.DefaultArea.Start()
	if err != nil {
		logger.Error("terminal area failed", "error", err)
		cancel()
		return
	}
	defer area.Stop()

	go func() {
		area.Update(view.Render(sess.CurrentView()))
		for {
			select {
			case <-sess.Done():
				return
			case <-sess.Updates():
				area.Update(view.Render(sess.CurrentView()))
			}
		}
	}()

	readInput(sessCtx, cancel, sess, logger)
	<-sess.Done()
	pterm.Info.Println("Left the table.")
}

// readInput turns terminal lines into chat or table actions until /quit or
// EOF.
func readInput(ctx context.Context, cancel context.CancelFunc, sess *session.Session, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch {
		case line == "/quit":
			cancel()
			return
		case line == "/fold":
			err = sess.SendAction(protocol.Action{Kind: protocol.ActionFold})
		case line == "/call" || line == "/check":
			err = sess.SendAction(protocol.Action{Kind: protocol.ActionCall})
		case line == "/start":
			err = sess.SendAction(protocol.Action{Kind: protocol.ActionStartGame})
		case line == "/next":
			err = sess.SendAction(protocol.Action{Kind: protocol.ActionNextHand})
		case strings.HasPrefix(line, "/bet "):
			var amount int
			amount, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/bet ")))
			if err != nil {
				err = fmt.Errorf("usage: /bet <amount>")
				break
			}
			err = sess.SendAction(protocol.Action{Kind: protocol.ActionBet, Amount: amount})
		case strings.HasPrefix(line, "/"):
			err = fmt.Errorf("unknown command %s", line)
		default:
			var text string
			text, err = validation.ValidateChatMessage(line)
			if err == nil {
				err = sess.SendChat(text)
			}
		}

		switch {
		case errors.Is(err, connection.ErrNotConnected):
			pterm.Warning.Println("Not connected; action dropped.")
		case errors.Is(err, session.ErrBetBelowMinimum):
			pterm.Warning.Println(err.Error())
		case errors.Is(err, session.ErrSessionClosed):
			return
		case err != nil:
			logger.Warn("input rejected", "error", err)
		}
	}
	cancel()
}

// roomSocketURL builds the per-room WebSocket endpoint.
func roomSocketURL(base, roomID string) string {
	return strings.TrimRight(base, "/") + "/ws/rooms/" + url.PathEscape(roomID)
}
