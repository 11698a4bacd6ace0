package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Planner  Planner  `koanf:"planner"`
	LLM      LLM      `koanf:"llm"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
}

// Planner holds the decision pipeline knobs. Durations are minutes.
type Planner struct {
	Timezone    string `koanf:"timezone"`
	MinDuration int    `koanf:"minduration"`
	SlotStep    int    `koanf:"slotstep"`
	// SearchBack bounds backward slot probing; 0 keeps probing forward-only.
	SearchBack int `koanf:"searchback"`
}

type LLM struct {
	Provider    string  `koanf:"provider"`
	ApiKey      string  `koanf:"apikey"`
	Host        string  `koanf:"host"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	CalendarId   string `koanf:"calendarid"`
	DryRun       bool   `koanf:"dryrun"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:8181",
		Planner: Planner{
			Timezone:    "UTC",
			MinDuration: 30,
			SlotStep:    15,
		},
		LLM: LLM{
			Provider:    "offline",
			Host:        "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Google: Google{
			CalendarId: "primary",
			DryRun:     true,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "calendon",
			Pass:   "",
			Name:   "calendon",
			Schema: "calendon",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CALENDON_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CALENDON_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
