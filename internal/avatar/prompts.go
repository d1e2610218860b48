package avatar

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultAnimal is used when the requested animal is not in the catalog.
const DefaultAnimal = "Cat"

const unsplash = "https://images.unsplash.com/photo-%s?w=400&h=400&fit=crop&crop=%s"

type animalRef struct {
	photo string
	crop  string
}

// catalog maps animal names to reference photos fed to the model as
// "Image B".
var catalog = map[string]animalRef{
	"Cat":      {"1514888286974-6c03e2ca1dba", "face"},
	"Dog":      {"1552053831-71594a27632d", "face"},
	"Rabbit":   {"1585110396000-c9ffd4e4b308", "face"},
	"Hamster":  {"1425082661705-1834bfd09dca", "face"},
	"Bird":     {"1452570053594-1b985d6ea890", "center"},
	"Fish":     {"1524704654690-b56c05c78a00", "face"},
	"Turtle":   {"1544551763-46a013bb70d5", "center"},
	"Frog":     {"1459262838948-3e2de6c1ec80", "face"},
	"Fox":      {"1474511320723-9a56873867b5", "face"},
	"Panda":    {"1564349683136-77e08dba1ef7", "face"},
	"Koala":    {"1459262838948-3e2de6c1ec80", "face"},
	"Monkey":   {"1540573133985-87b6da6d54a9", "face"},
	"Lion":     {"1552410260-0fd9b577afa6", "face"},
	"Tiger":    {"1561731216-c3a4d99437d5", "face"},
	"Bear":     {"1589656966895-2f33e7653819", "center"},
	"Pig":      {"1516467508483-a7212febe31a", "face"},
	"Elephant": {"1564760055775-d63b17a55c44", "face"},
	"Banana":   {"1571771894821-ce9b6c11b08e", "center"},
	"Octopus":  {"1544551763-46a013bb70d5", "center"},
	"Penguin":  {"1551986782-d0169b3f8fa7", "face"},
}

// Animals lists the catalog names in alphabetical order.
func Animals() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnimalImageURL returns the reference photo for name, falling back to
// DefaultAnimal. Matching ignores case.
func AnimalImageURL(name string) string {
	ref, ok := lookupAnimal(name)
	if !ok {
		ref = catalog[DefaultAnimal]
	}
	return fmt.Sprintf(unsplash, ref.photo, ref.crop)
}

func lookupAnimal(name string) (animalRef, bool) {
	name = strings.TrimSpace(name)
	if ref, ok := catalog[name]; ok {
		return ref, true
	}
	for k, ref := range catalog {
		if strings.EqualFold(k, name) {
			return ref, true
		}
	}
	return animalRef{}, false
}

const promptTemplate = `Create a cartoon character of the human from Image A with very subtle %s characteristics inspired by Image B.

Style: cel-shaded game art with clean outlines and bold color blocks.
Balance: 95%% human, 5%% %s. Keep the person's likeness: face shape, hairstyle, skin tone and expression must stay recognisable. Add at most small hints of the animal such as ear shape, a tail tip or fur-textured accessories.
%s
Constraints: no text, no logos, no existing characters or other intellectual property. Plain soft background, centered subject, game-ready square crop.`

// BuildPrompt renders the generation brief for an animal and an optional
// age hint.
func BuildPrompt(animal, age string) string {
	animal = strings.TrimSpace(animal)
	if _, ok := lookupAnimal(animal); !ok {
		animal = DefaultAnimal
	}
	ageLine := ""
	if age = strings.TrimSpace(age); age != "" {
		ageLine = fmt.Sprintf("Age: depict the character as %s.", age)
	}
	lower := strings.ToLower(animal)
	return fmt.Sprintf(promptTemplate, lower, lower, ageLine)
}
