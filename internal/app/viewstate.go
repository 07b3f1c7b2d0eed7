package app

// ViewState names the modal the dashboard is currently showing. List is
// the base state; every other state is a modal layered on top of it. See
// cancelTarget for where a cancel from each state lands.
type ViewState int

const (
	ViewList ViewState = iota
	ViewAddTypeSelect
	ViewAddBranchInput
	ViewConfirmDelete
	ViewConfigModal
	ViewHelpModal
	ViewMergeBranchSelect
	ViewFilter
)

func (v ViewState) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewAddTypeSelect:
		return "add-type-select"
	case ViewAddBranchInput:
		return "add-branch-input"
	case ViewConfirmDelete:
		return "confirm-delete"
	case ViewConfigModal:
		return "config-modal"
	case ViewHelpModal:
		return "help-modal"
	case ViewMergeBranchSelect:
		return "merge-branch-select"
	case ViewFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// IsModal reports whether v is anything other than the base list view.
func (v ViewState) IsModal() bool {
	return v != ViewList
}

// cancelTarget returns the state a Cancel/Escape from v lands on.
// Every modal cancels back to List except the second Add step, which
// cancels back one step to the type-select screen.
func cancelTarget(v ViewState) ViewState {
	if v == ViewAddBranchInput {
		return ViewAddTypeSelect
	}
	return ViewList
}
