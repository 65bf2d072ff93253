package browser

// In-page extraction scripts. Selector strategies are layered because the
// target site rotates its markup: data-testid attributes first, schema.org
// itemprops second, structural heuristics last.

const cardExtractionJS = `
(function() {
	var cards = [];

	var containers = document.querySelectorAll('[data-testid="card-container"]');
	if (containers.length === 0) {
		containers = document.querySelectorAll('[itemprop="itemListElement"]');
	}
	if (containers.length === 0) {
		var links = document.querySelectorAll('a[href*="/rooms/"]');
		var parents = new Set();
		links.forEach(function(a) {
			var p = a.closest('div[class]');
			if (p) parents.add(p);
		});
		containers = Array.from(parents);
	}

	containers.forEach(function(card) {
		var titleEl = card.querySelector('[data-testid="listing-card-title"]') ||
		              card.querySelector('[id^="title_"]') ||
		              card.querySelector('[itemprop="name"]');
		var title = titleEl ? titleEl.innerText.trim() : '';

		// Price: first short $-prefixed span, else aria-label fallbacks
		var price = '';
		var spans = card.querySelectorAll('span');
		for (var i = 0; i < spans.length; i++) {
			var t = spans[i].innerText.trim();
			if (t.startsWith('$') && t.length < 40) {
				price = t;
				break;
			}
		}
		if (!price) {
			var priceEl = card.querySelector('[aria-label*="per night"]') ||
			              card.querySelector('[class*="price"]');
			if (priceEl) price = priceEl.innerText.trim();
		}

		// Rating: "4.xx" pattern or "X out of 5" aria-label
		var rating = '';
		for (var j = 0; j < spans.length; j++) {
			var rt = spans[j].innerText.trim();
			if (/^[0-5]\.\d{1,2}$/.test(rt)) {
				rating = rt;
				break;
			}
		}
		if (!rating) {
			var ratingEl = card.querySelector('[aria-label*="out of 5"]');
			if (ratingEl) rating = ratingEl.getAttribute('aria-label') || '';
		}

		var linkEl = card.querySelector('a[href*="/rooms/"]');
		var url = linkEl ? linkEl.href : '';

		var imgEl = card.querySelector('img');
		var image = imgEl ? (imgEl.src || '') : '';

		if (title || url) {
			cards.push({title: title, price: price, rating: rating, url: url, image: image});
		}
	});

	return cards;
})()
`

const detailExtractionJS = `
(function() {
	function text(sel) {
		var el = document.querySelector(sel);
		return el ? el.innerText.trim() : '';
	}

	var title = text('[data-section-id="TITLE_DEFAULT"] h1') || text('h1');
	var description = text('[data-section-id="DESCRIPTION_DEFAULT"] span') ||
	                  text('[data-section-id="OVERVIEW_DEFAULT"]');

	var price = '';
	var priceEl = document.querySelector('[data-testid="book-it-default"] span') ||
	              document.querySelector('[aria-label*="per night"]');
	if (priceEl) price = priceEl.innerText.trim();
	if (!price) {
		var spans = document.querySelectorAll('span');
		for (var i = 0; i < spans.length; i++) {
			var t = spans[i].innerText.trim();
			if (t.startsWith('$') && t.length < 40) { price = t; break; }
		}
	}

	var rating = text('[data-testid="pdp-reviews-highlight-banner-host-rating"]');
	var reviewCount = '';
	var anchors = document.querySelectorAll('a[href*="reviews"], button');
	for (var k = 0; k < anchors.length; k++) {
		var at = anchors[k].innerText ? anchors[k].innerText.trim() : '';
		if (/review/i.test(at)) {
			if (!rating) rating = at;
			reviewCount = at;
			break;
		}
	}

	var reviews = [];
	document.querySelectorAll('[data-review-id]').forEach(function(r) {
		var body = r.querySelector('span');
		var author = r.querySelector('h3, h2');
		var date = r.querySelector('li, time');
		if (body && body.innerText.trim()) {
			reviews.push({
				text: body.innerText.trim(),
				author: author ? author.innerText.trim() : '',
				date: date ? date.innerText.trim() : ''
			});
		}
	});

	var imgEl = document.querySelector('[data-section-id="HERO_DEFAULT"] img') ||
	            document.querySelector('img');

	return {
		title: title,
		description: description,
		price: price,
		rating: rating,
		reviewCount: reviewCount,
		image: imgEl ? (imgEl.src || '') : '',
		reviews: reviews.slice(0, 8)
	};
})()
`
