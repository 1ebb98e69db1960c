package store

// Schema is the findings-review schema. Idempotent; applied at open.
const Schema = `
CREATE TABLE IF NOT EXISTS grantees (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_grantees_name ON grantees(name);

CREATE TABLE IF NOT EXISTS agencies (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agencies_name ON agencies(name);

CREATE TABLE IF NOT EXISTS agency_grantees (
    agency_id   TEXT NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    grantee_id  TEXT NOT NULL REFERENCES grantees(id) ON DELETE CASCADE,
    PRIMARY KEY (agency_id, grantee_id)
);

CREATE TABLE IF NOT EXISTS grants (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    cfda        INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_grants_cfda ON grants(cfda);

CREATE TABLE IF NOT EXISTS grant_recipients (
    grant_id    TEXT NOT NULL REFERENCES grants(id) ON DELETE CASCADE,
    grantee_id  TEXT NOT NULL REFERENCES grantees(id) ON DELETE CASCADE,
    PRIMARY KEY (grant_id, grantee_id)
);

CREATE TABLE IF NOT EXISTS findings (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    number          TEXT NOT NULL DEFAULT '',
    finding_type    TEXT NOT NULL DEFAULT 'material_weakness',
    condition       TEXT NOT NULL DEFAULT '',
    cause           TEXT NOT NULL DEFAULT '',
    criteria        TEXT NOT NULL DEFAULT '',
    effect          TEXT NOT NULL DEFAULT '',
    recommendation  TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'new',
    grantee_id      TEXT REFERENCES grantees(id) ON DELETE CASCADE,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_findings_status ON findings(status);
CREATE INDEX IF NOT EXISTS idx_findings_grantee ON findings(grantee_id);

CREATE TABLE IF NOT EXISTS finding_agencies (
    finding_id  TEXT NOT NULL REFERENCES findings(id) ON DELETE CASCADE,
    agency_id   TEXT NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    PRIMARY KEY (finding_id, agency_id)
);

CREATE TABLE IF NOT EXISTS comments (
    id            TEXT PRIMARY KEY,
    finding_id    TEXT NOT NULL REFERENCES findings(id) ON DELETE CASCADE,
    author        TEXT NOT NULL,
    body          TEXT NOT NULL,
    is_published  INTEGER NOT NULL DEFAULT 1,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_finding ON comments(finding_id, created_at);
`
