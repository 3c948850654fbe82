package redis

const (
	// recordSnapshotScript atomically replaces the latest snapshot of a toolbox,
	// indexes the toolbox and prepends the snapshot to its capped history
	recordSnapshotScript = `
local latest_key = KEYS[1]    -- mstat:snapshot:{toolbox}
local index_set = KEYS[2]     -- mstat:toolboxes
local history_key = KEYS[3]   -- mstat:history:{toolbox}

local toolbox = ARGV[1]
local issued = ARGV[2]
local used = ARGV[3]
local license_type = ARGV[4]
local users = ARGV[5]
local captured_at = ARGV[6]
local encoded = ARGV[7]
local history_limit = tonumber(ARGV[8])

redis.call('DEL', latest_key)
redis.call('HSET', latest_key,
  'toolbox', toolbox,
  'issued', issued,
  'used', used,
  'type', license_type,
  'users', users,
  'captured_at', captured_at
)

redis.call('SADD', index_set, toolbox)

redis.call('LPUSH', history_key, encoded)
redis.call('LTRIM', history_key, 0, history_limit - 1)

return redis.call('LLEN', history_key)
`
)
