package database

const schema = `
CREATE TABLE IF NOT EXISTS identities (
    id CHAR(36) PRIMARY KEY,
    email VARCHAR(255),
    is_anonymous TINYINT(1) NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS memories (
    id CHAR(36) PRIMARY KEY,
    owner_id CHAR(36) NOT NULL,
    location VARCHAR(255) NOT NULL,
    photo_urls JSON NOT NULL,
    preview_url TEXT NOT NULL,
    watermarked_url TEXT NOT NULL,
    source_url TEXT NOT NULL,
    final_url TEXT,
    payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
    payment_amount INT NOT NULL DEFAULT 0,
    purchaser_email VARCHAR(255),
    tier VARCHAR(16),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    KEY idx_memories_owner_created (owner_id, created_at),
    FOREIGN KEY (owner_id) REFERENCES identities(id)
);
`
