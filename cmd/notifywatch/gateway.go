package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/gateway"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func newGateway(f *flags) (*gateway.Client, config.Config, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, cfg, err
	}
	log, err := notifykit.NewLogger(cfg)
	if err != nil {
		return nil, cfg, err
	}
	gw, err := gateway.New(cfg.APIURL,
		gateway.WithCredentials(cfg.AppKey, cfg.AppSecret),
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithLogger(log),
	)
	return gw, cfg, err
}

func historyCommand(f *flags) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "print the stored notifications of the configured user as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "department", Usage: "print a department's history instead"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gw, cfg, err := newGateway(f)
			if err != nil {
				return err
			}

			var items []notifications.Notification
			if dept := cmd.String("department"); dept != "" {
				items, err = gw.GetDepartmentHistory(ctx, dept)
			} else {
				items, err = gw.GetHistory(ctx, cfg.UserID)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
}

func sendCommand(f *flags) *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "send a notification to users, departments or everyone",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "message", Required: true},
			&cli.StringFlag{Name: "type", Value: string(notifications.TypeInfo)},
			&cli.StringSliceFlag{Name: "user", Usage: "recipient user id (repeatable)"},
			&cli.StringSliceFlag{Name: "department", Usage: "recipient department id (repeatable)"},
			&cli.BoolFlag{Name: "broadcast", Usage: "send to every connected user"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			typ, err := notifications.ParseType(cmd.String("type"))
			if err != nil {
				return err
			}
			gw, _, err := newGateway(f)
			if err != nil {
				return err
			}

			msg := gateway.Message{Type: typ, Title: cmd.String("title"), Message: cmd.String("message")}
			users := cmd.StringSlice("user")
			depts := cmd.StringSlice("department")

			var id string
			switch {
			case cmd.Bool("broadcast"):
				id, err = gw.Broadcast(ctx, msg)
			case len(users) == 1:
				id, err = gw.SendToUser(ctx, users[0], msg)
			case len(users) > 1:
				id, err = gw.SendToUsers(ctx, users, msg)
			case len(depts) == 1:
				id, err = gw.SendToDepartment(ctx, depts[0], msg)
			case len(depts) > 1:
				id, err = gw.SendToDepartments(ctx, depts, msg)
			default:
				return fmt.Errorf("one of --user, --department or --broadcast is required")
			}
			if err != nil {
				return err
			}

			fmt.Println(id)
			return nil
		},
	}
}
