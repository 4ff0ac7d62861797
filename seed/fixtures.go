package seed

import "github.com/eringen/precinct/content"

// SampleBusinesses returns the directory listings a fresh deployment starts with.
func SampleBusinesses() []content.Business {
	return []content.Business{
		{
			Name:        "Hazara House Restaurant",
			Category:    "Restaurant",
			Description: "Authentic Hazara cuisine featuring traditional mantu, ashak, and quroot dishes prepared with family recipes passed down generations.",
			Address:     "12 Thomas Street",
			Phone:       "(03) 9793 1234",
			Rating:      4.8,
			Image:       "https://picsum.photos/400/220",
			Website:     "https://hazarahouse.com.au",
			Facebook:    "https://facebook.com/hazarahouse",
			Instagram:   "https://instagram.com/hazarahouse",
		},
		{
			Name:        "Bamiyan Naan Bakery",
			Category:    "Bakery",
			Description: "Traditional Hazara breads, including roghani naan, kolcheh, and specialty pastries made fresh daily using ancestral methods.",
			Address:     "18 Thomas Street",
			Phone:       "(03) 9791 2345",
			Rating:      4.9,
			Image:       "https://picsum.photos/400/220",
			Website:     "https://bamiyannaan.com.au",
			Instagram:   "https://instagram.com/bamiyannaan",
		},
		{
			Name:        "Hazaristan Market",
			Category:    "Grocery",
			Description: "Specialty store offering Hazara ingredients, dried fruits, pickles, and traditional spices essential for authentic Hazara cooking.",
			Address:     "24 Thomas Street",
			Phone:       "(03) 9793 3456",
			Rating:      4.7,
			Image:       "https://picsum.photos/400/220",
			Website:     "https://hazaristanmarket.com.au",
			Facebook:    "https://facebook.com/hazaristanmarket",
		},
	}
}

// SamplePosts returns the blog posts a fresh deployment starts with.
func SamplePosts() []content.BlogPost {
	return []content.BlogPost{
		{
			Title:   "The History of Bamiyan Valley",
			Excerpt: "Explore the rich cultural heritage of the Bamiyan Valley, the ancestral homeland of the Hazara people...",
			Date:    "2025-03-15",
			Author:  content.AdminAuthor,
			Image:   "https://picsum.photos/400/250",
			Views:   156,
			Content: "The Bamiyan Valley in central Afghanistan has been a cradle of Hazara culture for centuries. " +
				"Located along the ancient Silk Road, this picturesque valley once housed the magnificent Bamiyan Buddhas, " +
				"testament to the region's rich history and cultural significance. The valley's strategic position made it " +
				"an important trade and cultural hub, connecting East and West.\n\n" +
				"For the Hazara people, Bamiyan represents more than just geographic significance. It embodies their resilience, " +
				"heritage, and identity. The terraced agricultural fields, distinctive architecture, and traditional practices " +
				"reflect generations of adaptation to the mountainous terrain. From the intricately carved caves to the " +
				"breathtaking landscape, every aspect of Bamiyan resonates with the story of the Hazara people.\n\n" +
				"Despite facing numerous challenges throughout history, the cultural traditions of Bamiyan continue to thrive. " +
				"Traditional music played on the dambura, unique culinary practices, and vibrant festivals celebrate the " +
				"enduring spirit of the Hazara community. These traditions have crossed oceans and continents, finding new " +
				"homes in places like Melbourne's Little Bamiyan.\n\n" +
				"Today, the Bamiyan Valley remains a symbol of cultural resilience and heritage for Hazara people worldwide. " +
				"While the physical landscape may be distant for many in the diaspora, the cultural connection remains strong, " +
				"passed down through generations and celebrated in communities like ours. At Little Bamiyan in Dandenong, " +
				"we strive to honor and preserve these connections to our ancestral homeland, ensuring that the rich legacy " +
				"of Bamiyan continues to inspire future generations.",
		},
	}
}
