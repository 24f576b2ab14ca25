// Package journal implements the reconciliation core: unpacking
// multi-value fields, normalizing broker exports, merging them into the
// trade ledger, scheduling retrospectives, building the weekly one-pager
// and sweeping reminder flags. Everything here is pure table-in/table-out
// logic; persistence goes through the Store interface.
package journal

// Workbook sheet names.
const (
	SheetJournal      = "Journal"
	SheetImportMirror = "TraderSync Export"
	SheetTradeLog     = "Trade Log"
	SheetRetro        = "Retro"
	SheetDataTags     = "Data Tags"
	SheetIdeas        = "Ideas"
	SheetOnePager     = "Weekly One Pager"
)

// Cell literals with business meaning.
const (
	// StatusOpen marks import rows that never enter the ledger.
	StatusOpen = "OPEN"
	// DueSentinel replaces a due date once the review is overdue.
	DueSentinel = "DUE"
	// FilterExpired and FilterTaken are idea dispositions.
	FilterExpired = "Expired"
	FilterTaken   = "Taken"
	// FollowupYes raises a journal row's digest priority.
	FollowupYes = "Yes"
	// OnePagerExcluded keeps a journal row out of the weekly digest.
	OnePagerExcluded = "no"
)

// Slot counts for the two multi-value import columns.
const (
	SetupSlots   = 6
	MistakeSlots = 5
)
