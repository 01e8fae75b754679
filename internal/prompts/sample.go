package prompts

// SampleLetter is a realistic complaint used by the prompt self-test.
const SampleLetter = `Beste,

Ik schrijf deze brief omdat ik erg ontevreden ben over de levering van mijn nieuwe windsurfplank.
De plank die ik op 15 november heb besteld, zou binnen 5 werkdagen geleverd worden, maar na 2 weken
heb ik nog steeds niks ontvangen! Ik heb al 3x gebeld maar krijg steeds andere verhalen te horen.
Dit is echt belachelijk! Ik heb wel 899 euro betaald en dan verwacht ik ook gewoon goede service.

Ik wil nu eindelijk weten waar mijn plank blijft en wanneer ik hem krijg. Als dit nog langer duurt
wil ik mijn geld terug! En ik ga zeker een slechte review achterlaten op alle websites.

gr,
Jan Jansen`
