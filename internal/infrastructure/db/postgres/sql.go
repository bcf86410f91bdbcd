package postgres

const createBookmarksSQL = `
CREATE TABLE IF NOT EXISTS bookmarks (
  user_id    TEXT        NOT NULL,
  event_id   BIGINT      NOT NULL,
  title      TEXT        NOT NULL,
  event_date TIMESTAMPTZ NULL,
  address    TEXT        NOT NULL DEFAULT '',
  image      TEXT        NOT NULL DEFAULT '',
  site_url   TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (user_id, event_id)
)
`

// xmax is 0 only for a freshly inserted row.
const upsertBookmarkSQL = `
INSERT INTO bookmarks (
  user_id, event_id, title, event_date, address, image, site_url, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id, event_id) DO UPDATE SET
  title=EXCLUDED.title, event_date=EXCLUDED.event_date, address=EXCLUDED.address,
  image=EXCLUDED.image, site_url=EXCLUDED.site_url
RETURNING created_at, (xmax = 0) AS inserted
`

const deleteBookmarkSQL = `
DELETE FROM bookmarks WHERE user_id = $1 AND event_id = $2
`

const listBookmarksSQL = `
SELECT user_id, event_id, title, event_date, address, image, site_url, created_at
FROM bookmarks
WHERE user_id = $1
ORDER BY event_date ASC NULLS LAST, created_at DESC
LIMIT $2
`
