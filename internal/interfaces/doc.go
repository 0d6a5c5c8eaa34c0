// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Upstream Interfaces
//
//   - Fetcher: Collection and play retrieval (internal/services/interfaces.go)
//   - Parser: XML document decoding (internal/bgg/parser.go)
//   - Doer / Middleware: Request decoration and transport (internal/bgg/middleware.go)
//
// ## Data Access Interfaces
//
//   - CollectionCache / PlaysCache: Cache writes (internal/services/interfaces.go)
//   - CollectionReader / PlaysReader: Cache reads (internal/http/stores.go)
//   - IdentityProvider: The account to sync (internal/services/interfaces.go)
//   - TimestampRecorder: Last successful sync times (internal/services/interfaces.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: Sync run state (internal/services/interfaces.go)
//   - ProgressReader: Sync run state for the API (internal/http/stores.go)
//
// ## Sync Triggers
//
//   - Syncer: Task queue processors (internal/tasks/sync.go)
//   - SyncRunner: Scheduled full sync (internal/scheduler/bgg_sync.go)
//
// # Adding a New Sync Type
//
//  1. Add a SyncType in internal/entities/sync_progress.go and a timestamp
//     key in internal/settingsstore/bgg_sync.go
//
//  2. Add the fetch to bgg.Client using fetchWithRetry, so it shares the
//     retry budget and backoff
//
//  3. Add the operation to services.SyncService, claiming the type through
//     begin() and releasing it with finish()
//
//  4. Expose it as a task in internal/tasks/sync.go and a route in
//     internal/http/router.go
//
// # Adding a New Request Middleware
//
//	func WithHeader(key, value string) bgg.Middleware {
//	    return func(next bgg.Doer) bgg.Doer {
//	        return bgg.DoerFunc(func(req *http.Request) (*http.Response, error) {
//	            req.Header.Set(key, value)
//	            return next.Do(req)
//	        })
//	    }
//	}
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
