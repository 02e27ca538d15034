package viewer

import "fmt"

// Zone is a drop target on the page.
type Zone string

// Page zones.
const (
	ZoneMap     Zone = "map"
	ZoneOverlay Zone = "overlay"
)

// DragEvent is a DOM drag-and-drop event name.
type DragEvent string

// Drag events the page forwards.
const (
	DragStart DragEvent = "dragstart"
	DragEnter DragEvent = "dragenter"
	DragOver  DragEvent = "dragover"
	DragLeave DragEvent = "dragleave"
	DragEnd   DragEvent = "dragend"
	DragDrop  DragEvent = "drop"
)

// listeners maps each zone to the events it reacts to: true shows the panel,
// false hides it. The overlay only exists once a drag has started, so it is the
// one that hides the panel on leave.
var listeners = map[Zone]map[DragEvent]bool{
	ZoneMap: {
		DragStart: true,
		DragEnter: true,
		DragOver:  true,
		DragDrop:  false,
	},
	ZoneOverlay: {
		DragOver:  true,
		DragLeave: false,
		DragEnd:   false,
		DragDrop:  false,
	},
}

// Panel is the drop overlay visibility.
type Panel struct {
	visible bool
}

// Visible reports whether the drop overlay is shown.
func (p *Panel) Visible() bool { return p.visible }

// Show displays the overlay.
func (p *Panel) Show() { p.visible = true }

// Hide clears the overlay.
func (p *Panel) Hide() { p.visible = false }

// Handle applies a drag event received by a zone. It reports whether the zone
// listens to that event; unknown zones or event names are an error.
func (p *Panel) Handle(zone Zone, event DragEvent) (bool, error) {
	events, ok := listeners[zone]
	if !ok {
		return false, fmt.Errorf("unknown zone %q", zone)
	}

	switch event {
	case DragStart, DragEnter, DragOver, DragLeave, DragEnd, DragDrop:
	default:
		return false, fmt.Errorf("unknown drag event %q", event)
	}

	show, ok := events[event]
	if !ok {
		return false, nil
	}

	p.visible = show
	return true, nil
}
