package main

import "go.pilab.hu/shadow-oidc/cmd/ssoctl/cmd"

func main() {
	cmd.Execute()
}
