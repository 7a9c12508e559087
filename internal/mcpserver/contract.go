package mcpserver

// CheckinGuide tells LLM consumers how check-ins are recorded and what the
// streak means.
const CheckinGuide = `# Mood Check-in Guide

Each calendar day holds at most one mood entry. Recording a second check-in
for the same day replaces the first one and leaves the streak unchanged.

## Feelings

Use exactly one of these labels:

| Label       | Emoji |
|-------------|-------|
| great       | 😊    |
| good        | 🙂    |
| okay        | 😐    |
| not great   | 😕    |
| difficult   | 😢    |

## Fields

- ` + "`feeling`" + ` (required): one of the labels above.
- ` + "`note`" + ` (optional): free text, stored as given after trimming.
- ` + "`date`" + ` (optional): ` + "`YYYY-MM-DD`" + `; defaults to today (UTC).

## Streak

The streak counts consecutive calendar days with an entry, ending at the most
recent entry. Any missed day resets it to 1 on the next new day.

## Tone

Entries are personal. Do not judge or diagnose. If someone describes a crisis,
point them to local emergency services or a crisis line.
`
