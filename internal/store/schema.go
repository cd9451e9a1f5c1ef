package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS last_good (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    origin               TEXT NOT NULL,
    captured_at          TEXT NOT NULL,
    payload              TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    captured_at          TEXT NOT NULL,
    tokens_used          INTEGER NOT NULL,
    token_limit          INTEGER NOT NULL,
    tokens_remaining     INTEGER NOT NULL,
    percentage_used      REAL NOT NULL,
    burn_rate            REAL NOT NULL,
    current_plan         TEXT,
    today_cost           REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_captured ON snapshots(captured_at);
`
