package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/ptah-sh/deploy-action/pkg/conftools"
	"github.com/ptah-sh/deploy-action/pkg/deployclient"
)

var help = `
ptah-deploy validates a list of processes and submits it as a deployment to a Ptah control plane.
`

// Settings that must never be printed.
var maskedConfig = []string{
	conftools.Key(deployclient.InputAPIKey),
}

func init() {
	flag.ErrHelp = errors.New(help)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	deployclient.InitFlags(flag.CommandLine)
	conftools.Initialize("ptah-deploy")
}
