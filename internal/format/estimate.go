package format

const bytesPerMB = 1024 * 1024

// pagesPerMB holds the estimate coefficient for each format.
var pagesPerMB = map[Format]int64{
	PDF:  10,
	EPUB: 20,
	CBZ:  5,
	CBR:  5,
}

// EstimatePageCount returns max(1, floor(sizeMB * coefficient)) for f.
// The multiplication happens before the division so the floor is exact.
// Unknown formats estimate a single page.
func EstimatePageCount(size int64, f Format) int {
	coef, ok := pagesPerMB[f]
	if !ok || size <= 0 {
		return 1
	}
	pages := size * coef / bytesPerMB
	if pages < 1 {
		return 1
	}
	return int(pages)
}
