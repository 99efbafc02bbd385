package main

import (
	"encoding/json"
	"github.com/beldeveloper/bluegreen/pkg/client"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"os"
)

func main() {
	cliApp := &cli.App{
		Name:  "bluegreen-cli",
		Usage: "operate blue/green deployments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "orchestrator API address",
				EnvVars: []string{"BLUEGREEN_URL"},
			},
			&cli.StringFlag{
				Name:    "access-key",
				Usage:   "API access key",
				EnvVars: []string{"BLUEGREEN_ACCESS_KEY"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "add debug logs",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "groups",
				Usage: "list the deployment groups",
				Action: func(c *cli.Context) error {
					res, err := newClient(c).Groups(c.Context)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "group",
				Usage:     "show a deployment group",
				ArgsUsage: "group",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("group: group", 2)
					}
					res, err := newClient(c).Group(c.Context, client.GroupID(c.Args().First()))
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "weights",
				Usage:     "show the traffic weights of a group",
				ArgsUsage: "group",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("weights: group", 2)
					}
					res, err := newClient(c).Weights(c.Context, client.GroupID(c.Args().First()))
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "deploy",
				Usage:     "deploy a new version to the idle pool of a group",
				ArgsUsage: "group version",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strategy", Value: client.StrategyCanary, Usage: "all-at-once, linear or canary"},
					&cli.IntFlag{Name: "step", Usage: "percent of traffic shifted per step"},
					&cli.IntSliceFlag{Name: "steps", Usage: "explicit canary increments, e.g. --steps 10,30,60"},
					&cli.DurationFlag{Name: "interval", Usage: "bake time of every step"},
					&cli.DurationFlag{Name: "wait", Usage: "wait for the deployment to end"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return cli.Exit("deploy: group version", 2)
					}
					f := client.FormDeploy{
						Version:     c.Args().Get(1),
						Strategy:    c.String("strategy"),
						StepPercent: c.Int("step"),
						Steps:       c.IntSlice("steps"),
					}
					if d := c.Duration("interval"); d > 0 {
						f.Interval = d.String()
					}
					cl := newClient(c)
					h, err := cl.Deploy(c.Context, client.GroupID(c.Args().First()), f)
					if err != nil {
						return err
					}
					log.WithFields(log.Fields{"group": h.GroupID, "deployment": h.ID}).Debug("Deployment is accepted")
					if d := c.Duration("wait"); d > 0 {
						res, err := cl.Await(c.Context, h, d)
						if err != nil {
							return err
						}
						return printJSON(res)
					}
					return printJSON(h)
				},
			},
			{
				Name:      "status",
				Usage:     "show the status of a deployment",
				ArgsUsage: "group deployment",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "wait", Usage: "wait for the deployment to end"},
				},
				Action: func(c *cli.Context) error {
					h, err := handleArgs(c, "status")
					if err != nil {
						return err
					}
					var res client.DeploymentStatus
					if d := c.Duration("wait"); d > 0 {
						res, err = newClient(c).Await(c.Context, h, d)
					} else {
						res, err = newClient(c).Status(c.Context, h)
					}
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "cancel",
				Usage:     "roll back a deployment",
				ArgsUsage: "group deployment",
				Action: func(c *cli.Context) error {
					h, err := handleArgs(c, "cancel")
					if err != nil {
						return err
					}
					res, err := newClient(c).Cancel(c.Context, h)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "recover",
				Usage:     "retry the stalled rollback of a group",
				ArgsUsage: "group",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("recover: group", 2)
					}
					res, err := newClient(c).Recover(c.Context, client.GroupID(c.Args().First()))
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("url"), c.String("access-key"))
}

func handleArgs(c *cli.Context, cmd string) (client.DeploymentHandle, error) {
	if c.Args().Len() != 2 {
		return client.DeploymentHandle{}, cli.Exit(cmd+": group deployment", 2)
	}
	return client.DeploymentHandle{GroupID: client.GroupID(c.Args().First()), ID: c.Args().Get(1)}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

