package storage

const schemaSQL = `
-- One row per crawl run. The engine never touches this table; the
-- orchestrating layer creates the row and moves its status.
CREATE TABLE IF NOT EXISTS crawls (
    id TEXT PRIMARY KEY,
    domain TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'running', 'finished', 'failed', 'cancelled')),
    error_message TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Per-page SEO extraction results. At most one row per normalized URL
-- per crawl run.
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crawl_id TEXT NOT NULL REFERENCES crawls(id),
    url TEXT NOT NULL,
    status_code INTEGER,
    title TEXT,
    meta_description TEXT,
    canonical TEXT,
    schema_types TEXT,
    full_text TEXT,
    text_length INTEGER,
    h1_count INTEGER DEFAULT 0,
    h2_count INTEGER DEFAULT 0,
    h3_count INTEGER DEFAULT 0,
    h4_count INTEGER DEFAULT 0,
    h5_count INTEGER DEFAULT 0,
    h6_count INTEGER DEFAULT 0,
    internal_links INTEGER DEFAULT 0,
    external_links INTEGER DEFAULT 0,
    nofollow_links INTEGER DEFAULT 0,
    target_keyword TEXT,
    fetch_error TEXT,
    crawled_at DATETIME,
    UNIQUE(crawl_id, url)
);

CREATE INDEX IF NOT EXISTS idx_pages_crawl ON pages(crawl_id);
CREATE INDEX IF NOT EXISTS idx_pages_status_code ON pages(status_code);

-- Directed link graph. Unique per (crawl, from, to); repeated sightings
-- bump link_count and OR the nofollow flag.
CREATE TABLE IF NOT EXISTS page_links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crawl_id TEXT NOT NULL REFERENCES crawls(id),
    from_url TEXT NOT NULL,
    to_url TEXT NOT NULL,
    link_count INTEGER NOT NULL DEFAULT 1,
    is_nofollow INTEGER NOT NULL DEFAULT 0,
    is_internal INTEGER NOT NULL DEFAULT 0,
    UNIQUE(crawl_id, from_url, to_url)
);

CREATE INDEX IF NOT EXISTS idx_links_from ON page_links(crawl_id, from_url);
CREATE INDEX IF NOT EXISTS idx_links_to ON page_links(crawl_id, to_url);

-- Images per page, for alt-text coverage reporting.
CREATE TABLE IF NOT EXISTS page_images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crawl_id TEXT NOT NULL REFERENCES crawls(id),
    page_url TEXT NOT NULL,
    src TEXT NOT NULL,
    alt TEXT,
    has_alt INTEGER NOT NULL DEFAULT 0,
    format TEXT
);

CREATE INDEX IF NOT EXISTS idx_images_page ON page_images(crawl_id, page_url);
`
