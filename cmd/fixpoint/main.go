package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/fixpoint/log"
)

type config struct {
	args   []string
	stdout io.Writer
	logger logrus.FieldLogger
}

type command interface {
	Name() string
	Help() string
	Run(context.Context, logrus.FieldLogger) error
	Register(*flag.FlagSet)
}

func (config *config) run(ctx context.Context) int {
	cmdName, args := parseArgs(config.args)
	if cmdName == "" {
		config.printUsage()
		return errorExitCode
	}

	for _, cmd := range commands() {
		if cmd.Name() != cmdName {
			continue
		}
		flags := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		flags.SetOutput(config.stdout)
		cmd.Register(flags)
		if err := flags.Parse(args); err != nil {
			return errorExitCode
		}
		if err := cmd.Run(ctx, config.logger.WithField("command", cmdName)); err != nil {
			config.logger.WithError(err).Error("command failed")
			return errorExitCode
		}
		return successExitCode
	}

	config.printUsage()
	return errorExitCode
}

var (
	successExitCode = 0
	errorExitCode   = 1
)

func commands() []command {
	return []command{&convertCommand{}, &scrambleCommand{}}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	c := config{
		args:   os.Args,
		stdout: os.Stdout,
		logger: log.GetLogger(),
	}
	code := c.run(ctx)
	stop()
	os.Exit(code)
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func (config *config) printUsage() {
	fmt.Fprintln(config.stdout, "Fixpoint converts float samples into saturated fixed-point samples")
	fmt.Fprintln(config.stdout)
	fmt.Fprintln(config.stdout, "Usage: fixpoint <command> [flags]")
	fmt.Fprintln(config.stdout)
	fmt.Fprintln(config.stdout, "Commands:")
	for _, cmd := range commands() {
		fmt.Fprintf(config.stdout, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
