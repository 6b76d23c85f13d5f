package db

// Schema is the DDL for the analyzer tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS detection_rules (
    issue_code       TEXT PRIMARY KEY,
    handler_type     TEXT NOT NULL,
    detection_config JSONB NOT NULL DEFAULT '{}'::jsonb,
    severity         TEXT,
    weight           INTEGER,
    message          TEXT,
    suggestion       TEXT,
    can_auto_fix     BOOLEAN NOT NULL DEFAULT FALSE,
    enabled          BOOLEAN NOT NULL DEFAULT TRUE,
    load_order       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS rule_cache_version (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    version    BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS issue_catalog (
    issue_code   TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    severity     TEXT NOT NULL,
    weight       INTEGER NOT NULL,
    category     TEXT NOT NULL,
    subcategory  TEXT,
    description  TEXT,
    fix_guidance TEXT,
    can_auto_fix BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS issue_code_aliases (
    legacy_code    TEXT PRIMARY KEY,
    canonical_code TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_results (
    id            UUID PRIMARY KEY,
    fingerprint   TEXT NOT NULL,
    total         INTEGER NOT NULL,
    grade         TEXT NOT NULL,
    rules_version BIGINT NOT NULL DEFAULT 0,
    result        JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analysis_results_fingerprint ON analysis_results (fingerprint);
`
