package tui

// Layout constants
const (
	ModalWidthMargin          = 6 // Standard horizontal margin (m.width - 6)
	ModalHeightMargin         = 3 // Standard vertical margin (m.height - 3)
	ModalHeightMarginSmall    = 2 // Small vertical margin (m.height - 2)
	ModalOverheadLines        = 6 // Title (2) + padding (2) + border (2)
	ModalOverheadMinimal      = 4 // Border + title for minimal modals
	ViewportPaddingHorizontal = 4 // Horizontal padding (left + right)

	// Catalog panel width as a share of the screen, with a floor
	CatalogWidthPercent = 35
	CatalogMinWidth     = 30

	// Footer messages longer than this are truncated; the full text is in the error modal
	FooterMessageMax = 100

	// HistoryLimit is how many history rows the modal loads
	HistoryLimit = 200
)
