package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDBFile is the backing file name used when nothing else is configured.
const DefaultDBFile = "task_db.json"

// Environment variables consulted during resolution.
const (
	EnvDBFile    = "TODO_DB_FILE"
	EnvIndexFile = "TODO_INDEX_FILE"
	EnvDebug     = "TODO_DEBUG"
)

// GetConfigValue returns the environment variable if set, otherwise configValue.
func GetConfigValue(envVar, configValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return configValue
}

// ResolveDBFile picks the backing file path: the flag value, then
// TODO_DB_FILE, then db_file from the global config, then DefaultDBFile.
// The result may be relative; the store resolves it against the working
// directory when it is opened.
func ResolveDBFile(flagValue string) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		cfg = &GlobalConfig{}
	}
	if v := GetConfigValue(EnvDBFile, cfg.DBFile); v != "" {
		return ExpandPath(v)
	}
	return DefaultDBFile
}

// ResolveIndexFile picks the SQLite mirror path for a backing file: the flag
// value, then TODO_INDEX_FILE, then index_file from the global config, then
// IndexPathFor(dbFile).
func ResolveIndexFile(flagValue, dbFile string) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		cfg = &GlobalConfig{}
	}
	if v := GetConfigValue(EnvIndexFile, cfg.IndexFile); v != "" {
		return ExpandPath(v)
	}
	return IndexPathFor(dbFile)
}

// IndexPathFor derives the default mirror path from a backing file path by
// swapping its extension for .db (task_db.json -> task_db.db).
func IndexPathFor(dbFile string) string {
	ext := filepath.Ext(dbFile)
	if ext == ".db" {
		return dbFile + ".db"
	}
	return strings.TrimSuffix(dbFile, ext) + ".db"
}
