// config.go - Haupt-Konfigurationsfunktionen fuer vitcache
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (VITCACHE_DEBUG)
// - Device: Gibt das Zielgeraet fuer Cache und Backbone zurueck (VITCACHE_DEVICE)
// - ConfigPath: Gibt den Pfad zur Harness-Konfiguration zurueck (VITCACHE_CONFIG)
// - Var: Liest eine Environment-Variable
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Harness- und Cache-Einstellungen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dcvla/vitcache/ml"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via VITCACHE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("VITCACHE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Device gibt das Zielgeraet zurueck
// Konfigurierbar via VITCACHE_DEVICE (z.B. cpu, cuda:0, metal)
// Ungueltige Werte fallen auf cpu zurueck
func Device() ml.Device {
	s := Var("VITCACHE_DEVICE")
	d, err := ml.ParseDevice(s)
	if err != nil {
		slog.Warn("invalid device, using default", "device", s, "default", ml.CPU, "error", err)
		return ml.CPU
	}

	return d
}

// ConfigPath gibt den Pfad zur YAML-Konfiguration des Harness zurueck
// Konfigurierbar via VITCACHE_CONFIG
// Default: leer (keine Datei)
var ConfigPath = String("VITCACHE_CONFIG")

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
