package word

// Built-in fallback list so the server runs without a word file mounted.
// Override with WORDS_FILE.
var defaultWords = []string{
	"apple", "airplane", "anchor", "angel", "ant",
	"backpack", "balloon", "banana", "baseball", "basket",
	"beach", "bear", "bee", "bell", "bicycle",
	"bird", "blanket", "boat", "book", "bottle",
	"bowl", "bracelet", "bread", "bridge", "broom",
	"bucket", "bus", "butterfly", "cactus", "cake",
	"camera", "campfire", "candle", "car", "carrot",
	"castle", "cat", "caterpillar", "chair", "cheese",
	"cherry", "chicken", "church", "circus", "cloud",
	"clown", "compass", "computer", "cookie", "couch",
	"cow", "crab", "crayon", "crown", "cup",
	"dinosaur", "dog", "dolphin", "door", "dragon",
	"drum", "duck", "eagle", "ear", "earth",
	"egg", "elephant", "envelope", "eye", "feather",
	"fence", "fire truck", "fish", "flag", "flower",
	"fork", "fountain", "fox", "frog", "ghost",
	"giraffe", "glasses", "glove", "grapes", "guitar",
	"hamburger", "hammer", "hat", "helicopter", "horse",
	"hot dog", "house", "ice cream", "igloo", "island",
	"jacket", "jellyfish", "kangaroo", "key", "kite",
	"ladder", "lamp", "leaf", "lighthouse", "lion",
	"lollipop", "map", "mermaid", "microphone", "monkey",
	"moon", "mountain", "mushroom", "nest", "octopus",
	"owl", "paintbrush", "palm tree", "pancake", "panda",
	"parachute", "peacock", "pencil", "penguin", "piano",
	"pirate", "pizza", "popcorn", "pumpkin", "rabbit",
	"rainbow", "robot", "rocket", "roller coaster", "sandcastle",
	"scarecrow", "scissors", "shark", "sheep", "shoe",
	"skateboard", "snail", "snowman", "spider", "spoon",
	"starfish", "strawberry", "submarine", "sun", "sunflower",
	"swing", "sword", "telescope", "tent", "tiger",
	"toothbrush", "tractor", "train", "treasure chest", "tree",
	"truck", "turtle", "umbrella", "unicorn", "violin",
	"volcano", "watermelon", "whale", "windmill", "zebra",
}
