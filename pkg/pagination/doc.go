// Package pagination walks zero-based paginated endpoints one page at a time.
//
// hh.ru caps search results at 2000 vacancies and answers each page with the
// items for that page only, so the walker keeps requesting pages until one of:
//
//   - the page cap is reached (StopMaxPages)
//   - a page comes back empty (StopExhausted)
//   - the page function fails (StopError)
//   - the context is cancelled (StopCancelled)
//
// None of these are errors for the caller: Walk always returns a Summary and
// the caller keeps whatever the page function collected so far.
//
// Example usage:
//
//	summary := pagination.Walk(ctx, pagination.Config{
//		MaxPages: 10,
//		Pause:    pacer.AfterPage,
//	}, func(ctx context.Context, page int) (int, error) {
//		return collectPage(ctx, page)
//	})
package pagination
