package common

import "time"

// SessionValidity is how long a freshly issued session stays valid.
const SessionValidity = 14 * 24 * time.Hour

// StorageNamespace prefixes every key persisted to local storage.
const StorageNamespace = "ideaboard"
