package backend

// SetupSQL is the repair DDL surfaced when the schema is missing. It matches
// what db.Init migrates, so an operator can bootstrap a hosted Postgres that
// the service only has query access to.
const SetupSQL = `-- PULSE INFRASTRUCTURE REPAIR

CREATE TABLE IF NOT EXISTS reservations (
  id text PRIMARY KEY,
  name text NOT NULL,
  email text NOT NULL,
  phone text,
  booking_date text,
  booking_time text,
  party_size integer,
  table_id text,
  zone text,
  status text DEFAULT 'pending',
  total_amount numeric,
  is_vip boolean DEFAULT false,
  created_at timestamptz DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tenants (
  id text PRIMARY KEY,
  location text NOT NULL,
  status text DEFAULT 'SYNCING',
  load text DEFAULT '0%',
  yield numeric DEFAULT 0,
  health integer DEFAULT 100,
  created_at timestamptz DEFAULT now()
);

CREATE TABLE IF NOT EXISTS staff (
  id text PRIMARY KEY,
  name text NOT NULL,
  role text NOT NULL,
  status text DEFAULT 'ACTIVE',
  sector text,
  created_at timestamptz DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_logs (
  id text PRIMARY KEY,
  action text NOT NULL,
  "user" text,
  details text,
  timestamp timestamptz DEFAULT now()
);

CREATE TABLE IF NOT EXISTS change_events (
  id bigserial PRIMARY KEY,
  table_name text NOT NULL,
  event_type text NOT NULL,
  new_row jsonb,
  old_row jsonb,
  created_at timestamptz DEFAULT now()
);

CREATE TABLE IF NOT EXISTS push_subscriptions (
  endpoint text PRIMARY KEY,
  p256dh text NOT NULL,
  auth text NOT NULL,
  created_at timestamptz DEFAULT now()
);`
