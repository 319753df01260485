// Package feed renders an organization's events as an iCalendar object so
// members can subscribe from an external calendar application. The feed is
// read-only; it never touches the store.
package feed

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/bandroom/schedule"
	"github.com/bandroom/schedule/recurrence"
)

const productID = "-//bandroom//schedule//EN"

// Build assembles a VCALENDAR from the given events. Series children are
// skipped: the parent's RRULE already describes them, and emitting both would
// double every occurrence in a subscribed calendar.
func Build(organizationName string, events []*schedule.Event) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if organizationName != "" {
		cal.Props.SetText(ical.PropName, organizationName)
	}

	for _, event := range events {
		if event.IsSeriesChild() {
			continue
		}
		component, err := buildEvent(event)
		if err != nil {
			return nil, fmt.Errorf("render event %s: %w", event.ID, err)
		}
		cal.Children = append(cal.Children, component)
	}
	return cal, nil
}

func buildEvent(event *schedule.Event) (*ical.Component, error) {
	start, end, err := occurrenceTimes(event)
	if err != nil {
		return nil, err
	}

	component := ical.NewComponent(ical.CompEvent)
	component.Props.SetText(ical.PropUID, event.ID)
	component.Props.SetText(ical.PropSummary, summary(event))
	component.Props.SetDateTime(ical.PropDateTimeStart, start)
	component.Props.SetDateTime(ical.PropDateTimeEnd, end)
	component.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
	if event.Location != "" {
		component.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.Notes != "" {
		component.Props.SetText(ical.PropDescription, event.Notes)
	}
	if event.Rule != nil {
		component.Props.SetText(ical.PropRecurrenceRule, ruleString(*event.Rule))
	}
	return component, nil
}

func summary(event *schedule.Event) string {
	if event.Title != "" {
		return event.Title
	}
	if event.Kind == schedule.KindGig {
		return "Gig"
	}
	return "Rehearsal"
}

// occurrenceTimes combines the wall-clock date and time strings into concrete
// timestamps. An end time before the start rolls over to the next day.
func occurrenceTimes(event *schedule.Event) (start, end time.Time, err error) {
	startClock, err := time.Parse(schedule.TimeFormat, event.StartTime)
	if err != nil {
		return start, end, fmt.Errorf("invalid start time %q: %w", event.StartTime, err)
	}
	endClock, err := time.Parse(schedule.TimeFormat, event.EndTime)
	if err != nil {
		return start, end, fmt.Errorf("invalid end time %q: %w", event.EndTime, err)
	}

	day := schedule.Day(event.Date)
	start = day.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute)
	end = day.Add(time.Duration(endClock.Hour())*time.Hour + time.Duration(endClock.Minute())*time.Minute)
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// ruleString emits the rule as RRULE text. The monthly frequency is a fixed
// 4-week stride in the engine, so it is emitted as WEEKLY;INTERVAL=4 to match
// the dates actually generated.
func ruleString(rule recurrence.Rule) string {
	option := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  rule.Frequency.WeekInterval(),
		Byweekday: rruleWeekdays(rule.Weekdays),
	}
	if until, ok := rule.Until.Get(); ok {
		option.Until = until
	}
	return option.RRuleString()
}

func rruleWeekdays(weekdays []time.Weekday) []rrule.Weekday {
	table := map[time.Weekday]rrule.Weekday{
		time.Monday:    rrule.MO,
		time.Tuesday:   rrule.TU,
		time.Wednesday: rrule.WE,
		time.Thursday:  rrule.TH,
		time.Friday:    rrule.FR,
		time.Saturday:  rrule.SA,
		time.Sunday:    rrule.SU,
	}
	out := make([]rrule.Weekday, 0, len(weekdays))
	for _, wd := range weekdays {
		out = append(out, table[wd])
	}
	return out
}
