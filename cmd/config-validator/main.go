package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chess10kp/hexpanel/internal/config"
)

func main() {
	write := flag.String("write-defaults", "", "write the default config to this path and exit")
	flag.Parse()

	if *write != "" {
		cfg := config.DefaultConfig
		if err := config.SaveConfig(&cfg, *write); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", *write)
		return
	}

	configPath := config.DefaultPath
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	fmt.Printf("Validating config: %s\n", configPath)

	if err := config.ValidateConfig(configPath); err != nil {
		fmt.Printf("Config validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Config is valid")
}
